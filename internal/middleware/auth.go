package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/recorre/indie-comments-cloud/internal/services"
	"github.com/recorre/indie-comments-cloud/internal/utils"
)

// UserIDKey is the context local holding the authenticated user id.
const UserIDKey = "userID"

// Auth validates the Bearer session token and stores the user id in the
// request context for panel handlers.
func Auth(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return utils.ErrorResponse(c, "Missing bearer token",
				fiber.StatusUnauthorized, "panel.authorization")
		}

		userID, err := tokens.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			return utils.ErrorResponse(c, "Invalid or expired session",
				fiber.StatusUnauthorized, "panel.authorization")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID extracts the authenticated user id set by Auth.
func UserID(c *fiber.Ctx) (uint64, bool) {
	id, ok := c.Locals(UserIDKey).(uint64)
	return id, ok
}
