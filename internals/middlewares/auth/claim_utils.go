// internals/middlewares/auth/claim_utils.go
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func extractBearerToken(c *fiber.Ctx, allowCookie bool) (string, error) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" && allowCookie {
		if cookieTok := strings.TrimSpace(c.Cookies("access_token")); cookieTok != "" {
			return cookieTok, nil
		}
	}
	if auth == "" {
		return "", errors.New("unauthorized - No token provided")
	}

	// tolerate double spaces and a lowercase scheme
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", errors.New("unauthorized - Invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", errors.New("unauthorized - Empty token")
	}
	return tok, nil
}

// id / sub / user_id, in that order.
func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, key := range []string{"id", "sub", "user_id"} {
		if s := strClaim(claims, key); s != "" {
			return uuid.Parse(s)
		}
	}
	return uuid.Nil, errors.New("no user id")
}

func strClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
