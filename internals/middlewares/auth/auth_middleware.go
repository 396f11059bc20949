// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"csesociety_backend/internals/constants"
	helperAuth "csesociety_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // use the access_token cookie when there is no Bearer header
	// ActiveUserChecker rejects tokens of deleted/deactivated users (optional).
	ActiveUserChecker func(ctx context.Context, userID uuid.UUID) error
}

// AuthJWT verifies the access token and hydrates user_id / role locals.
// Token issuance lives in the identity service; this side only verifies.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret is required")
	}

	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c, o.AllowCookieFallback)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			log.Println("[WARN] AuthJWT: invalid token:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		role, ok := constants.ParseRole(strClaim(claims, "role"))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Unknown role")
		}

		if o.ActiveUserChecker != nil {
			if err := o.ActiveUserChecker(c.UserContext(), userID); err != nil {
				log.Println("[WARN] AuthJWT: inactive user:", userID, err)
				return fiber.NewError(fiber.StatusForbidden, "Account is deactivated")
			}
		}

		c.Locals(helperAuth.LocClaims, claims)
		c.Locals(helperAuth.LocUserID, userID.String())
		c.Locals(helperAuth.LocRole, role)
		if name := strClaim(claims, "user_name"); name != "" {
			c.Locals(helperAuth.LocUserName, name)
		}
		return c.Next()
	}
}
