package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prohibitedIncident opens an incident on a fresh listing, has mod1 decide it
// as PROHIBITED and returns both.
func prohibitedIncident(t *testing.T, env *testEnv) (*models.Product, *models.Incident) {
	t.Helper()
	ctx := t.Context()
	p := env.product(t, "Bolso", "Réplica de diseñador")
	opened, err := env.incidents.OpenAutomatic(ctx, p)
	require.NoError(t, err)
	require.NotNil(t, opened)
	_, err = env.incidents.Assign(ctx, opened.ID, env.mod1)
	require.NoError(t, err)
	resolved, err := env.incidents.Resolve(ctx, opened.ID, env.mod1, models.DecisionProhibited, "copia de marca")
	require.NoError(t, err)
	return p, resolved
}

func TestAppealApprovedRestoresListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p, incident := prohibitedIncident(t, env)
	require.Equal(t, models.VisibilityProhibited, env.visibility(t, p.Ref()))

	appeal, err := env.appeals.Create(ctx, incident.ID, env.seller, "Es original", "Adjunto factura")
	require.NoError(t, err)
	assert.Equal(t, models.AppealPending, appeal.State)

	stored, err := env.incidents.Get(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentAppealed, stored.State)

	_, err = env.appeals.Assign(ctx, appeal.ID, env.mod1)
	assert.ErrorIs(t, err, ErrForbidden, "the deciding moderator cannot review the appeal")

	assigned, err := env.appeals.Assign(ctx, appeal.ID, env.mod2)
	require.NoError(t, err)
	assert.Equal(t, models.AppealInReview, assigned.State)
	require.NotNil(t, assigned.ReviewerID)
	assert.Equal(t, env.mod2.ID, *assigned.ReviewerID)

	resolved, err := env.appeals.Resolve(ctx, appeal.ID, models.AppealDecisionApproved, "factura válida")
	require.NoError(t, err)
	assert.Equal(t, models.AppealApproved, resolved.State)
	require.NotNil(t, resolved.FinalDecision)
	assert.Equal(t, models.AppealDecisionApproved, *resolved.FinalDecision)
	assert.NotNil(t, resolved.ReviewedAt)

	assert.Equal(t, models.VisibilityActive, env.visibility(t, p.Ref()))

	stored, err = env.incidents.Get(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentAppealed, stored.State)
	require.NotNil(t, stored.Decision)
	assert.Equal(t, models.DecisionProhibited, *stored.Decision)

	_, err = env.appeals.Resolve(ctx, appeal.ID, models.AppealDecisionRejected, "")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = env.appeals.Assign(ctx, appeal.ID, env.mod2)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAppealRejectedKeepsListingProhibited(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p, incident := prohibitedIncident(t, env)

	appeal, err := env.appeals.Create(ctx, incident.ID, env.seller, "No es copia", "")
	require.NoError(t, err)
	_, err = env.appeals.Assign(ctx, appeal.ID, env.mod2)
	require.NoError(t, err)

	resolved, err := env.appeals.Resolve(ctx, appeal.ID, models.AppealDecisionRejected, "sin pruebas")
	require.NoError(t, err)
	assert.Equal(t, models.AppealRejected, resolved.State)
	assert.Equal(t, models.VisibilityProhibited, env.visibility(t, p.Ref()))
}

func TestCreateAppealGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	open := env.product(t, "Cuchillo", "Acero")
	pending, err := env.incidents.OpenFromBuyerReport(ctx, open.Ref(), env.buyer, "Peligroso")
	require.NoError(t, err)
	_, err = env.appeals.Create(ctx, pending.ID, env.seller, "motivo", "")
	assert.ErrorIs(t, err, ErrInvalidState)
	none, err := env.appeals.ListByIncident(ctx, pending.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
	stored, err := env.incidents.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentPending, stored.State)

	_, incident := prohibitedIncident(t, env)

	_, err = env.appeals.Create(ctx, incident.ID, env.buyer, "no es mío", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.appeals.Create(ctx, incident.ID, env.seller, "  ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.appeals.Create(ctx, uuid.New(), env.seller, "motivo", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.appeals.Create(ctx, incident.ID, env.seller, "primera", "")
	require.NoError(t, err)
	_, err = env.appeals.Create(ctx, incident.ID, env.seller, "segunda", "")
	assert.ErrorIs(t, err, ErrInvalidState)

	appeals, err := env.appeals.ListByIncident(ctx, incident.ID)
	require.NoError(t, err)
	assert.Len(t, appeals, 1)
}

func TestAppealGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	_, incident := prohibitedIncident(t, env)
	appeal, err := env.appeals.Create(ctx, incident.ID, env.seller, "motivo", "")
	require.NoError(t, err)

	_, err = env.appeals.Resolve(ctx, appeal.ID, models.AppealDecisionApproved, "")
	assert.ErrorIs(t, err, ErrInvalidState, "pending appeals must be assigned first")

	_, err = env.appeals.Assign(ctx, appeal.ID, env.buyer)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.appeals.Resolve(ctx, appeal.ID, models.AppealDecision("MAYBE"), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.appeals.Assign(ctx, uuid.New(), env.mod2)
	assert.ErrorIs(t, err, ErrAppealNotFound)
}

func TestAppealQueues(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	_, first := prohibitedIncident(t, env)
	_, second := prohibitedIncident(t, env)
	a1, err := env.appeals.Create(ctx, first.ID, env.seller, "uno", "")
	require.NoError(t, err)
	a2, err := env.appeals.Create(ctx, second.ID, env.seller, "dos", "")
	require.NoError(t, err)

	pending, err := env.appeals.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, a1.ID, pending[0].ID)
	assert.Equal(t, a2.ID, pending[1].ID)

	_, err = env.appeals.Assign(ctx, a2.ID, env.mod2)
	require.NoError(t, err)

	byReviewer, err := env.appeals.ListByReviewer(ctx, env.mod2.ID)
	require.NoError(t, err)
	require.Len(t, byReviewer, 1)
	assert.Equal(t, a2.ID, byReviewer[0].ID)

	bySeller, err := env.appeals.ListBySeller(ctx, env.seller.ID)
	require.NoError(t, err)
	assert.Len(t, bySeller, 2)

	inReview, err := env.appeals.List(ctx, models.AppealInReview, 10, 0)
	require.NoError(t, err)
	assert.Len(t, inReview, 1)
}

func TestServiceListingAppealLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	svc := env.service(t, "Clases de tiro", "Uso de armas de fuego")

	opened, err := env.incidents.OpenAutomatic(ctx, svc)
	require.NoError(t, err)
	require.NotNil(t, opened)
	assert.Equal(t, svc.Ref(), opened.Listing)

	_, err = env.incidents.Resolve(ctx, opened.ID, env.mod1, models.DecisionProhibited, "armas")
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityProhibited, env.visibility(t, svc.Ref()))

	appeal, err := env.appeals.Create(ctx, opened.ID, env.seller, "Es un club federado", "")
	require.NoError(t, err)
	_, err = env.appeals.Assign(ctx, appeal.ID, env.mod2)
	require.NoError(t, err)
	_, err = env.appeals.Resolve(ctx, appeal.ID, models.AppealDecisionApproved, "licencia válida")
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityActive, env.visibility(t, svc.Ref()))
}

func TestResolverCannotReviewAppeal(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p := env.product(t, "Zapatillas", "Talla 42")

	// decided straight from PENDING, never formally assigned
	pending, err := env.incidents.OpenFromBuyerReport(ctx, p.Ref(), env.buyer, "Parecen falsas")
	require.NoError(t, err)
	require.Nil(t, pending.AssignedModeratorID)

	resolved, err := env.incidents.Resolve(ctx, pending.ID, env.mod1, models.DecisionProhibited, "imitación")
	require.NoError(t, err)
	require.NotNil(t, resolved.AssignedModeratorID)
	assert.Equal(t, env.mod1.ID, *resolved.AssignedModeratorID)
	assert.NotNil(t, resolved.AssignedAt)

	appeal, err := env.appeals.Create(ctx, pending.ID, env.seller, "Son originales", "")
	require.NoError(t, err)

	_, err = env.appeals.Assign(ctx, appeal.ID, env.mod1)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.appeals.Assign(ctx, appeal.ID, env.mod2)
	require.NoError(t, err)
}

func TestResolverReplacesAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p := env.product(t, "Cartera", "Cuero")

	incident, err := env.incidents.OpenFromBuyerReport(ctx, p.Ref(), env.buyer, "Marca copiada")
	require.NoError(t, err)
	_, err = env.incidents.Assign(ctx, incident.ID, env.mod1)
	require.NoError(t, err)
	resolved, err := env.incidents.Resolve(ctx, incident.ID, env.mod2, models.DecisionProhibited, "")
	require.NoError(t, err)
	require.NotNil(t, resolved.AssignedModeratorID)
	assert.Equal(t, env.mod2.ID, *resolved.AssignedModeratorID)

	appeal, err := env.appeals.Create(ctx, incident.ID, env.seller, "motivo", "")
	require.NoError(t, err)
	_, err = env.appeals.Assign(ctx, appeal.ID, env.mod2)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.appeals.Assign(ctx, appeal.ID, env.mod1)
	require.NoError(t, err)
}
