package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"csesociety_backend/internals/constants"
	helperAuth "csesociety_backend/internals/helpers/auth"
)

// RequireCapability lets the request through only when the caller's role holds cap
// in the central capability table.
func RequireCapability(cap constants.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := helperAuth.GetRole(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Role not found")
		}
		if !constants.Can(role, cap) {
			log.Printf("[WARN] capability denied: role=%s cap=%s path=%s", role, cap, c.Path())
			return fiber.NewError(fiber.StatusForbidden, constants.CapabilityError(role, cap))
		}
		return c.Next()
	}
}
