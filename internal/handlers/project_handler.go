package handlers

import (
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.projectService.List(userID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch projects")
	}
	return c.JSON(resp)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrProjectNotFound, "")
	}

	resp, err := h.projectService.Get(userID, projectID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch project")
	}
	return c.JSON(resp)
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.CreateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.projectService.Create(userID, &req)
	if err != nil {
		return serviceError(c, err, "Failed to create project")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrProjectNotFound, "")
	}
	var req dto.UpdateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.projectService.Update(userID, projectID, &req)
	if err != nil {
		return serviceError(c, err, "Failed to update project")
	}
	return c.JSON(resp)
}

// Delete removes the project and its assignments. ?cascade=true also
// removes its services, logs and query logs.
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrProjectNotFound, "")
	}

	if err := h.projectService.Delete(userID, projectID, c.QueryBool("cascade", false)); err != nil {
		return serviceError(c, err, "Failed to delete project")
	}
	return c.JSON(dto.MessageResponse{Message: "Project deleted"})
}

func (h *ProjectHandler) Assign(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrProjectNotFound, "")
	}
	var req dto.AssignUserRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		return serviceError(c, services.ErrUserNotFound, "")
	}

	user, err := h.projectService.AssignUser(userID, tenant.IsAdmin(c), projectID, targetID)
	if err != nil {
		return serviceError(c, err, "Failed to assign user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *ProjectHandler) Unassign(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	projectID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrProjectNotFound, "")
	}
	targetID, err := parseParam(c, "userId")
	if err != nil {
		return serviceError(c, services.ErrAssignmentNotFound, "")
	}

	if err := h.projectService.UnassignUser(userID, tenant.IsAdmin(c), projectID, targetID); err != nil {
		return serviceError(c, err, "Failed to remove user")
	}
	return c.JSON(dto.MessageResponse{Message: "User removed from project"})
}

// AvailableUsers is mounted under the admin group.
func (h *ProjectHandler) AvailableUsers(c *fiber.Ctx) error {
	projectID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrProjectNotFound, "")
	}

	users, err := h.projectService.AvailableUsers(projectID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch users")
	}
	return c.JSON(users)
}
