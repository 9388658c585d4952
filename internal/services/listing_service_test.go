package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateListingRunsDetection(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	clean, err := env.catalog.CreateProduct(ctx, env.seller, &dto.CreateProductRequest{Name: "Guitarra", Price: 120})
	require.NoError(t, err)
	assert.Equal(t, 1, clean.Quantity)

	flagged, err := env.catalog.CreateService(ctx, env.seller, &dto.CreateServiceRequest{
		Title:       "Envíos discretos",
		Description: "Transporte de mercancía ilegal",
		Category:    "logística",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityActive, flagged.Visibility)

	cleanIncidents, err := env.incidents.ListByListing(ctx, clean.Ref())
	require.NoError(t, err)
	assert.Empty(t, cleanIncidents)

	flaggedIncidents, err := env.incidents.ListByListing(ctx, flagged.Ref())
	require.NoError(t, err)
	require.Len(t, flaggedIncidents, 1)
	assert.Equal(t, "prohibited term detected: ilegal", flaggedIncidents[0].DetectionReason)

	_, err = env.catalog.CreateProduct(ctx, env.seller, &dto.CreateProductRequest{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateRescansText(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p, err := env.catalog.CreateProduct(ctx, env.seller, &dto.CreateProductRequest{Name: "Linterna", Price: 5})
	require.NoError(t, err)

	price := 7.5
	_, err = env.catalog.Update(ctx, env.seller, p.Ref(), &dto.UpdateListingRequest{Price: &price})
	require.NoError(t, err)
	incidents, err := env.incidents.ListByListing(ctx, p.Ref())
	require.NoError(t, err)
	assert.Empty(t, incidents)

	desc := "Incluye explosivo de señalización"
	updated, err := env.catalog.Update(ctx, env.seller, p.Ref(), &dto.UpdateListingRequest{Description: &desc})
	require.NoError(t, err)
	_, gotDesc := updated.Text()
	assert.Equal(t, desc, gotDesc)

	incidents, err = env.incidents.ListByListing(ctx, p.Ref())
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, models.OriginAutoDetection, incidents[0].Origin)

	_, err = env.catalog.Update(ctx, env.buyer, p.Ref(), &dto.UpdateListingRequest{Description: &desc})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateSkipsScanWhileIncidentOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p, err := env.catalog.CreateProduct(ctx, env.seller, &dto.CreateProductRequest{
		Name: "Kit químico", Description: "Contiene droga de laboratorio",
	})
	require.NoError(t, err)

	desc := "Ahora con explosivo"
	_, err = env.catalog.Update(ctx, env.seller, p.Ref(), &dto.UpdateListingRequest{Description: &desc})
	require.NoError(t, err)
	incidents, err := env.incidents.ListByListing(ctx, p.Ref())
	require.NoError(t, err)
	require.Len(t, incidents, 1, "an open incident absorbs further edits")

	_, err = env.incidents.Resolve(ctx, incidents[0].ID, env.mod1, models.DecisionAllowed, "uso escolar")
	require.NoError(t, err)

	desc = "Ahora con contrabando"
	_, err = env.catalog.Update(ctx, env.seller, p.Ref(), &dto.UpdateListingRequest{Description: &desc})
	require.NoError(t, err)
	incidents, err = env.incidents.ListByListing(ctx, p.Ref())
	require.NoError(t, err)
	assert.Len(t, incidents, 2)
}

func TestSetOwnVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p := env.product(t, "Silla", "Plegable")

	hidden, err := env.catalog.SetOwnVisibility(ctx, env.seller, p.Ref(), models.VisibilityHidden)
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityHidden, hidden.CurrentVisibility())

	_, err = env.catalog.SetOwnVisibility(ctx, env.buyer, p.Ref(), models.VisibilityActive)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.catalog.SetOwnVisibility(ctx, env.seller, p.Ref(), models.VisibilityProhibited)
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, env.listings.SetVisibility(ctx, p.Ref(), models.VisibilityProhibited))
	_, err = env.catalog.SetOwnVisibility(ctx, env.seller, p.Ref(), models.VisibilityActive)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, models.VisibilityProhibited, env.visibility(t, p.Ref()))

	active, err := env.catalog.ListActiveProducts(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDetectionFailureDoesNotBlockListing(t *testing.T) {
	env := newTestEnv(t)
	broken := NewIncidentService(env.db, env.listings, nil, nil)
	catalog := NewListingService(env.db, env.listings, broken)

	p, err := catalog.CreateProduct(t.Context(), env.seller, &dto.CreateProductRequest{Name: "Arma de juguete"})
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityActive, env.visibility(t, p.Ref()))
}
