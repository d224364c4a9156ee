package api

import (
	"github.com/gofiber/fiber/v2"
)

var passwordChangeAllowedPaths = map[string]bool{
	"/api/auth/change-password": true,
	"/api/auth/logout":          true,
	"/api/auth/me":              true,
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	if user.MustChangePassword && !passwordChangeAllowedPaths[c.Path()] {
		return apiError(c, fiber.StatusForbidden, "password change required")
	}
	return c.Next()
}
