package handlers

import (
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type QueryLogHandler struct {
	queryLogService *services.QueryLogService
}

func NewQueryLogHandler(queryLogService *services.QueryLogService) *QueryLogHandler {
	return &QueryLogHandler{queryLogService: queryLogService}
}

func (h *QueryLogHandler) Optimize(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.OptimizeQueryRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	entry, err := h.queryLogService.Optimize(c.UserContext(), userID, &req)
	if err != nil {
		return serviceError(c, err, "Failed to optimize query")
	}
	return c.JSON(entry)
}

func (h *QueryLogHandler) List(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, err := optionalQueryID(c, "project_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.queryLogService.List(userID, projectID, c.QueryInt("limit", services.DefaultLogLimit))
	if err != nil {
		return serviceError(c, err, "Failed to fetch query logs")
	}
	return c.JSON(resp)
}

func (h *QueryLogHandler) Get(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrQueryLogNotFound, "")
	}

	entry, err := h.queryLogService.Get(userID, id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch query log")
	}
	return c.JSON(entry)
}
