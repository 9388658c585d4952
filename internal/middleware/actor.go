package middleware

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorKey = "actor"

// ActorLoader resolves the account behind a token subject.
type ActorLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// LoadActor runs after JWTProtected. It loads the caller's account so that
// role checks see the current role rather than the one baked into the token.
func LoadActor(users ActorLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasAdminToken(c) {
			return c.Next()
		}
		userID, err := GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unknown account",
			})
		}

		c.Locals(actorKey, user)
		return c.Next()
	}
}

// LoadOptionalActor runs after OptionalJWT. Anonymous callers, and tokens
// whose account no longer exists, continue without an actor.
func LoadOptionalActor(users ActorLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := GetUserID(c)
		if err != nil {
			return c.Next()
		}
		if user, err := users.GetByID(c.UserContext(), userID); err == nil {
			c.Locals(actorKey, user)
		}
		return c.Next()
	}
}

// Actor returns the account loaded by LoadActor, or nil.
func Actor(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(actorKey).(*models.User); ok {
		return user
	}
	return nil
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}
