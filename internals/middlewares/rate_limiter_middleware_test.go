package middlewares

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpoofedForwardedForDoesNotResetLimit(t *testing.T) {
	app := fiber.New(FiberConfig(nil))
	app.Post("/pay", PaymentInitRateLimiter(), func(c *fiber.Ctx) error {
		return c.SendString(c.IP())
	})

	limited := 0
	for i := 0; i < 30; i++ {
		req := httptest.NewRequest(http.MethodPost, "/pay", nil)
		req.Header.Set(fiber.HeaderXForwardedFor, fmt.Sprintf("10.0.0.%d", i))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		if resp.StatusCode == fiber.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 20, limited)
}

func TestGatewayCallbackLimiterIgnoresForwardedFor(t *testing.T) {
	app := fiber.New(FiberConfig(nil))
	var seen []string
	app.Get("/cb", GatewayCallbackRateLimiter(), func(c *fiber.Ctx) error {
		seen = append(seen, c.IP())
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/cb", nil)
		req.Header.Set(fiber.HeaderXForwardedFor, fmt.Sprintf("203.0.113.%d", i))
		_, err := app.Test(req, -1)
		require.NoError(t, err)
	}
	require.Len(t, seen, 3)
	assert.Equal(t, seen[0], seen[1])
	assert.Equal(t, seen[0], seen[2])
	assert.NotContains(t, seen[0], "203.0.113.")
}
