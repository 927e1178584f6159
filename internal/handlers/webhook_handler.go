package handlers

import (
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	ingestService *services.IngestService
}

func NewWebhookHandler(ingestService *services.IngestService) *WebhookHandler {
	return &WebhookHandler{ingestService: ingestService}
}

// Log is unauthenticated. It answers 202 once the project is known;
// analysis and notification happen afterwards.
func (h *WebhookHandler) Log(c *fiber.Ctx) error {
	var req dto.WebhookLogRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	accepted, err := h.ingestService.Accept(&req)
	if err != nil {
		return serviceError(c, err, "Failed to register log")
	}
	return c.Status(fiber.StatusAccepted).JSON(accepted)
}

func (h *WebhookHandler) Analyze(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.WebhookAnalyzeRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.ingestService.AnalyzeSync(c.UserContext(), userID, &req)
	if err != nil {
		return serviceError(c, err, "Failed to analyze error")
	}
	return c.JSON(resp)
}
