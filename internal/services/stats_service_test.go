package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCountsAndInvalidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	stats, err := env.stats.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, stats.Incidents, len(models.IncidentStates))
	assert.Zero(t, stats.Incidents["PENDING"])
	assert.Zero(t, stats.Appeals["PENDING"])

	_, incident := prohibitedIncident(t, env)
	_, err = env.appeals.Create(ctx, incident.ID, env.seller, "motivo", "")
	require.NoError(t, err)

	stats, err = env.stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Incidents["APPEALED"])
	assert.Equal(t, int64(1), stats.Appeals["PENDING"])
}

func TestStatsServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	_, err := env.stats.Get(ctx)
	require.NoError(t, err)

	// written behind the services' back, so nothing invalidates
	p := env.product(t, "Mapa", "Antiguo")
	require.NoError(t, env.db.Create(&models.Incident{
		Listing:  p.Ref(),
		Origin:   models.OriginBuyerReport,
		State:    models.IncidentPending,
		SellerID: env.seller.ID,
	}).Error)

	cached, err := env.stats.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, cached.Incidents["PENDING"])

	env.stats.Invalidate(ctx)
	fresh, err := env.stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.Incidents["PENDING"])
}
