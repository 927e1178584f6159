package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/analyzer"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

var errInvalidBody = errors.New("Invalid request body")

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return errInvalidBody
	}
	return dto.Validate(req)
}

func unauthorized(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
}

func parseParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

// optionalQueryID parses an optional UUID query parameter.
func optionalQueryID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid id", name)
	}
	return &id, nil
}

// serviceError maps service-layer errors to responses. Anything unknown is
// logged and answered with fallback.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	var verr *dto.ValidationError
	var aerr *analyzer.AnalysisError

	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrServiceNotFound),
		errors.Is(err, services.ErrLogNotFound),
		errors.Is(err, services.ErrQueryLogNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAssignmentNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrAccessDenied),
		errors.Is(err, services.ErrNotOwner):
		return errorJSON(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrAlreadyAssigned),
		errors.Is(err, services.ErrCannotRemoveOwner),
		errors.Is(err, services.ErrInvalidInterval),
		errors.Is(err, services.ErrServiceProjectMismatch),
		errors.As(err, &verr):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &aerr):
		slog.Error("AI provider call failed", "path", c.Path(), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	slog.Error("request failed", "path", c.Path(), "error", err)
	if fallback == "" {
		fallback = "Internal server error"
	}
	return errorJSON(c, fiber.StatusInternalServerError, fallback)
}
