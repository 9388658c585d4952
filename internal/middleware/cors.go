package middleware

import (
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows the configured origins and request headers. X-Request-ID is
// exposed so clients can quote it when reporting a failed moderation action.
func CORS(cfg *config.Config) fiber.Handler {
	headers := cfg.CORSHeaders
	if headers == "" {
		headers = config.DefaultCORSHeaders
	}
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     headers,
		AllowMethods:     "GET, POST, PUT, OPTIONS",
		ExposeHeaders:    fiber.HeaderXRequestID,
		AllowCredentials: false,
	})
}
