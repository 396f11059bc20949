// middlewares/cors_middleware.go

package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// CorsMiddleware allows the dev origins plus the configured client app.
func CorsMiddleware(clientBaseURL string) fiber.Handler {
	origins := append([]string{}, defaultOrigins...)
	if u := strings.TrimRight(strings.TrimSpace(clientBaseURL), "/"); u != "" {
		origins = append(origins, u)
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	})
}
