package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/checker"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type ServiceHandler struct {
	serviceManager *services.ServiceManager
	checker        *checker.Checker
}

func NewServiceHandler(serviceManager *services.ServiceManager, checker *checker.Checker) *ServiceHandler {
	return &ServiceHandler{serviceManager: serviceManager, checker: checker}
}

func (h *ServiceHandler) List(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, err := optionalQueryID(c, "project_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	list, err := h.serviceManager.List(userID, projectID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch services")
	}
	return c.JSON(dto.ServiceListResponse{Services: list, Count: len(list)})
}

func (h *ServiceHandler) Get(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	serviceID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrServiceNotFound, "")
	}

	svc, err := h.serviceManager.Get(userID, serviceID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch service")
	}
	return c.JSON(svc)
}

func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.CreateServiceRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	svc, err := h.serviceManager.Create(userID, &req)
	if err != nil {
		return serviceError(c, err, "Failed to create service")
	}
	return c.Status(fiber.StatusCreated).JSON(svc)
}

func (h *ServiceHandler) Update(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	serviceID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrServiceNotFound, "")
	}
	var req dto.UpdateServiceRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	svc, err := h.serviceManager.Update(userID, serviceID, &req)
	if err != nil {
		return serviceError(c, err, "Failed to update service")
	}
	return c.JSON(svc)
}

func (h *ServiceHandler) Delete(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	serviceID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrServiceNotFound, "")
	}

	if err := h.serviceManager.Delete(userID, serviceID); err != nil {
		return serviceError(c, err, "Failed to delete service")
	}
	return c.JSON(dto.MessageResponse{Message: "Service deleted"})
}

// StatusAll checks every accessible service, or those of ?project_id, one
// after another.
func (h *ServiceHandler) StatusAll(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, err := optionalQueryID(c, "project_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	list, err := h.serviceManager.List(userID, projectID)
	if err != nil {
		return serviceError(c, err, "Failed to check services")
	}

	results := make([]*checker.Result, 0, len(list))
	for i := range list {
		result, err := h.checker.Check(c.UserContext(), &list[i], checker.Manual)
		if err != nil {
			slog.Error("manual check failed", "service_id", list[i].ID.String(), "error", err)
		}
		results = append(results, result)
	}
	return c.JSON(results)
}

func (h *ServiceHandler) Status(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	serviceID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrServiceNotFound, "")
	}

	svc, err := h.serviceManager.Get(userID, serviceID)
	if err != nil {
		return serviceError(c, err, "Failed to check service")
	}
	result, err := h.checker.Check(c.UserContext(), svc, checker.Manual)
	if err != nil {
		return serviceError(c, err, "Failed to check service")
	}
	return c.JSON(result)
}
