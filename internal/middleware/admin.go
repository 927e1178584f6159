package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/config"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminRequired lets a request through when the caller's email is listed in
// ADMIN_EMAILS or their stored role is admin. The role is read from the
// database, not the token, so demotions apply immediately.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := cfg.AdminEmailList()

	return func(c *fiber.Ctx) error {
		userID, err := tenant.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if contains(adminEmails, strings.ToLower(tenant.GetEmail(c))) {
			tenant.SetAdmin(c, true)
			return c.Next()
		}

		var user models.User
		if err := db.Select("id", "role").First(&user, "id = ?", userID).Error; err == nil && user.IsAdmin() {
			tenant.SetAdmin(c, true)
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

// ResolveAdmin records whether the caller is an admin without rejecting
// anyone. Handlers read the result with tenant.IsAdmin.
func ResolveAdmin(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := cfg.AdminEmailList()

	return func(c *fiber.Ctx) error {
		userID, err := tenant.GetUserID(c)
		if err != nil {
			return c.Next()
		}
		if contains(adminEmails, strings.ToLower(tenant.GetEmail(c))) {
			tenant.SetAdmin(c, true)
			return c.Next()
		}
		var user models.User
		admin := db.Select("id", "role").First(&user, "id = ?", userID).Error == nil && user.IsAdmin()
		tenant.SetAdmin(c, admin)
		return c.Next()
	}
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
