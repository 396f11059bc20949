package middlewares

import (
	"context"
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"

	helper "csesociety_backend/internals/helpers"
	"csesociety_backend/internals/middlewares/logger"
)

// FiberConfig is the app config shared by main and tests. X-Forwarded-For is
// only read when the direct peer is in trustedProxies, so c.IP() (and every
// IP-keyed limiter) cannot be steered by the client.
func FiberConfig(trustedProxies []string) fiber.Config {
	return fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.ErrorHandler,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          trustedProxies,
	}
}

// RequestContext tags each request with X-Request-ID and a bounded user context.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()
		if dur := time.Since(start); dur > 2*time.Second {
			log.Printf("[SLOW REQ] id=%s %s %s dur=%s", id, c.Method(), c.OriginalURL(), dur)
		}
		return err
	}
}

func SetupMiddlewares(app *fiber.App, clientBaseURL string) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(35 * time.Second))
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware(clientBaseURL))
}
