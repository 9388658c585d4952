package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitBuyerReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p := env.product(t, "Consola", "Como nueva")

	report, incident, err := env.reports.SubmitBuyerReport(ctx, env.buyer, p.Ref(), "Posible estafa", "<b>Pide pago</b> por fuera")
	require.NoError(t, err)

	assert.Equal(t, incident.ID, report.IncidentID)
	assert.Equal(t, "Pide pago por fuera", report.Description)
	assert.Equal(t, models.OriginBuyerReport, incident.Origin)
	assert.Equal(t, models.IncidentPending, incident.State)
	assert.Equal(t, env.seller.ID, incident.SellerID)
	require.NotNil(t, incident.ReporterID)
	assert.Equal(t, env.buyer.ID, *incident.ReporterID)
	assert.Equal(t, "Posible estafa: Pide pago por fuera", incident.Description)

	byListing, err := env.reports.ListByListing(ctx, p.Ref())
	require.NoError(t, err)
	assert.Len(t, byListing, 1)

	byReporter, err := env.reports.ListByReporter(ctx, env.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, byReporter, 1)
}

func TestSubmitBuyerReportIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	missing := models.ListingRef{Kind: models.ListingProduct, ID: uuid.New()}
	_, _, err := env.reports.SubmitBuyerReport(ctx, env.buyer, missing, "Falso", "")
	assert.ErrorIs(t, err, ErrListingNotFound)

	p := env.product(t, "Tablet", "")
	_, _, err = env.reports.SubmitBuyerReport(ctx, env.buyer, p.Ref(), "", "sin motivo")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = env.reports.SubmitBuyerReport(ctx, env.buyer, models.ListingRef{Kind: "car", ID: p.ID}, "x", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	var reports, incidents int64
	require.NoError(t, env.db.Model(&models.Report{}).Count(&reports).Error)
	require.NoError(t, env.db.Model(&models.Incident{}).Count(&incidents).Error)
	assert.Zero(t, reports)
	assert.Zero(t, incidents)
}

func TestSubmitModeratorReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p := env.product(t, "Curso online", "Certificado incluido")

	incident, err := env.reports.SubmitModeratorReport(ctx, env.mod1, p.Ref(), "Certificado no oficial")
	require.NoError(t, err)
	assert.True(t, incident.AssignedTo(env.mod1.ID))

	_, err = env.reports.SubmitModeratorReport(ctx, env.buyer, p.Ref(), "intento")
	assert.ErrorIs(t, err, ErrForbidden)
}
