package middleware

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/config"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/session"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected validates the bearer token and rejects tokens revoked by
// logout. A revocation store outage fails open and is logged.
func JWTProtected(cfg *config.Config, revoker session.Revoker) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			if revoker == nil {
				return c.Next()
			}
			jti, _ := tenant.GetTokenID(c)
			if jti == "" {
				return c.Next()
			}
			revoked, err := revoker.IsRevoked(c.UserContext(), jti)
			if err != nil {
				slog.Error("token revocation lookup failed", "error", err)
				return c.Next()
			}
			if revoked {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error:   true,
					Message: "Unauthorized: token has been revoked",
				})
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
