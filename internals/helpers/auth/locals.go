package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"csesociety_backend/internals/constants"
)

// Locals keys written by the JWT middleware.
const (
	LocUserID   = "user_id"   // string
	LocRole     = "role"      // constants.Role
	LocUserName = "user_name" // string
	LocClaims   = "jwt_claims"
)

// GetUserIDFromToken reads c.Locals("user_id").
// 401 when not logged in, 400 when the stored id is malformed.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals(LocUserID)
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User is not logged in")
	}

	var s string
	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User is not logged in")
		}
		return t, nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user id in token")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User is not logged in")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user id in token")
	}
	return id, nil
}

// GetRole returns the caller's role; ok=false when the middleware did not set one.
func GetRole(c *fiber.Ctx) (constants.Role, bool) {
	switch v := c.Locals(LocRole).(type) {
	case constants.Role:
		return v, v != ""
	case string:
		return constants.ParseRole(v)
	default:
		return "", false
	}
}
