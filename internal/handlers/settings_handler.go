package handlers

import (
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/gofiber/fiber/v2"
)

const defaultTestMessage = "This is a test notification from LogWise AI"

type SettingsHandler struct {
	settingsService *services.SettingsService
	notifier        services.Notifier
}

func NewSettingsHandler(settingsService *services.SettingsService, notifier services.Notifier) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, notifier: notifier}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	setting, err := h.settingsService.Get()
	if err != nil {
		return serviceError(c, err, "Failed to fetch settings")
	}
	return c.JSON(setting)
}

func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	setting, err := h.settingsService.Update(&req)
	if err != nil {
		return serviceError(c, err, "Failed to save settings")
	}
	return c.JSON(setting)
}

func (h *SettingsHandler) TestNotification(c *fiber.Ctx) error {
	var req dto.TestNotificationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if req.Type == "" {
		req.Type = notify.EventTest
	}
	if req.Message == "" {
		req.Message = defaultTestMessage
	}

	sent := h.notifier.Notify(c.UserContext(), notify.EventTest, notify.Event{Type: req.Type, Message: req.Message})
	if !sent {
		return errorJSON(c, fiber.StatusBadRequest, "Failed to send notification. Check Telegram configuration.")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Test notification sent successfully"})
}
