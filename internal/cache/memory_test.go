package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(8, time.Minute)

	_, err := s.Get(ctx, "stats")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Set(ctx, "stats", `{"pending":1}`))
	v, err := s.Get(ctx, "stats")
	require.NoError(t, err)
	assert.Equal(t, `{"pending":1}`, v)

	require.NoError(t, s.Delete(ctx, "stats"))
	_, err = s.Get(ctx, "stats")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(8, 20*time.Millisecond)

	require.NoError(t, s.Set(ctx, "k", "v"))
	assert.Eventually(t, func() bool {
		_, err := s.Get(ctx, "k")
		return err == ErrMiss
	}, time.Second, 10*time.Millisecond)
}
