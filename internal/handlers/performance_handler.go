package handlers

import (
	"errors"
	"net/url"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PerformanceHandler struct {
	performanceService *services.PerformanceService
}

func NewPerformanceHandler(performanceService *services.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performanceService: performanceService}
}

func (h *PerformanceHandler) Check(c *fiber.Ctx) error {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Endpoint URL is required")
	}
	if u, err := url.Parse(endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errorJSON(c, fiber.StatusBadRequest, "endpoint must be an http or https URL")
	}

	resp, err := h.performanceService.Check(c.UserContext(), endpoint)
	if errors.Is(err, services.ErrEndpointUnreachable) {
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
	if err != nil {
		return serviceError(c, err, "Failed to check performance")
	}
	return c.JSON(resp)
}
