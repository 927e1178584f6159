// Package tenant resolves the caller and their project scope from a
// request.
package tenant

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const adminLocal = "is_admin"

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("invalid token in context")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

func GetEmail(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	email, _ := mc["email"].(string)
	return email
}

// GetTokenID returns the access token's jti and expiry.
func GetTokenID(c *fiber.Ctx) (string, time.Time) {
	mc, err := claims(c)
	if err != nil {
		return "", time.Time{}
	}
	jti, _ := mc["jti"].(string)
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return jti, time.Time{}
	}
	return jti, exp.Time
}

// SetAdmin records the admin decision made by middleware.
func SetAdmin(c *fiber.Ctx, admin bool) {
	c.Locals(adminLocal, admin)
}

// IsAdmin reports the middleware's admin decision, falling back to the role
// claim when no middleware decided.
func IsAdmin(c *fiber.Ctx) bool {
	if v, ok := c.Locals(adminLocal).(bool); ok {
		return v
	}
	mc, err := claims(c)
	if err != nil {
		return false
	}
	role, _ := mc["role"].(string)
	return role == "admin"
}
