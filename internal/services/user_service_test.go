package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	promoted, err := env.users.SetRole(ctx, env.buyer.ID, models.RoleModerator)
	require.NoError(t, err)
	assert.True(t, promoted.CanModerate())

	reloaded, err := env.users.GetByID(ctx, env.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, reloaded.Role)

	_, err = env.users.SetRole(ctx, env.buyer.ID, models.Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
