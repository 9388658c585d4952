package middleware

import (
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

const adminTokenKey = "admin_token"

// AdminToken marks requests carrying the configured X-Admin-Token. Marked
// requests skip JWT and actor loading and pass AdminRequired.
func AdminToken(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		given := c.Get("X-Admin-Token")
		if cfg.AdminToken != "" && given != "" &&
			subtle.ConstantTimeCompare([]byte(given), []byte(cfg.AdminToken)) == 1 {
			c.Locals(adminTokenKey, true)
		}
		return c.Next()
	}
}

func hasAdminToken(c *fiber.Ctx) bool {
	ok, _ := c.Locals(adminTokenKey).(bool)
	return ok
}

// ModeratorRequired admits moderators and admins. It must run after LoadActor.
func ModeratorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Actor(c).CanModerate() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Moderator access required",
			})
		}
		return c.Next()
	}
}

// AdminRequired admits admin-token requests and loaded actors with the admin role.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasAdminToken(c) {
			return c.Next()
		}

		actor := Actor(c)
		if actor == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if actor.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}
		return c.Next()
	}
}
