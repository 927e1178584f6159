package handlers

import (
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		return serviceError(c, err, "Failed to register")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return serviceError(c, err, "")
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		return serviceError(c, err, "")
	}
	return c.JSON(resp)
}

// Logout revokes the refresh token in the body, if any, and the access
// token that authenticated this request.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	jti, exp := tenant.GetTokenID(c)
	if err := h.authService.Logout(c.UserContext(), req.RefreshToken, jti, exp); err != nil {
		return serviceError(c, err, "Failed to logout")
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.authService.Me(userID)
	if err != nil {
		return serviceError(c, err, "")
	}
	return c.JSON(user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		return serviceError(c, err, "Failed to update profile")
	}
	return c.JSON(user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(userID, &req); err != nil {
		return serviceError(c, err, "Failed to change password")
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated"})
}
