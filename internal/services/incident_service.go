package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/scopes"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxDescriptionLen = 1000
	maxCommentLen     = 1000
)

// StatsInvalidator is told whenever a write changes incident or appeal counts.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

// IncidentService owns the incident lifecycle: opening, assignment,
// resolution and the hand-off to appeals.
type IncidentService struct {
	db       *gorm.DB
	listings ListingStore
	scanner  *ContentScanner
	stats    StatsInvalidator

	// Now is the clock used for every timestamp the service writes.
	Now func() time.Time
}

func NewIncidentService(db *gorm.DB, listings ListingStore, scanner *ContentScanner, stats StatsInvalidator) *IncidentService {
	return &IncidentService{
		db:       db,
		listings: listings,
		scanner:  scanner,
		stats:    stats,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// OpenAutomatic scans the listing's text and opens an AUTO_DETECTION incident
// on the first prohibited term. A clean listing returns nil, nil.
func (s *IncidentService) OpenAutomatic(ctx context.Context, listing models.Listing) (*models.Incident, error) {
	title, description := listing.Text()
	term, found := s.scanner.Scan(title, description)
	if !found {
		return nil, nil
	}

	reason := "prohibited term detected: " + term
	incident := &models.Incident{
		Listing:         listing.Ref(),
		Origin:          models.OriginAutoDetection,
		Description:     "Automatic detection: " + reason,
		DetectionReason: reason,
		State:           models.IncidentPending,
		SellerID:        listing.OwnerID(),
		CreatedAt:       s.Now(),
	}
	if err := s.db.WithContext(ctx).Create(incident).Error; err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	s.opened(ctx, incident)
	return incident, nil
}

// OpenFromBuyerReport opens a PENDING incident for a buyer complaint.
func (s *IncidentService) OpenFromBuyerReport(ctx context.Context, ref models.ListingRef, reporter *models.User, description string) (*models.Incident, error) {
	var incident *models.Incident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		incident, err = s.openFromBuyerReport(ctx, tx, ref, reporter, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.opened(ctx, incident)
	return incident, nil
}

func (s *IncidentService) openFromBuyerReport(ctx context.Context, tx *gorm.DB, ref models.ListingRef, reporter *models.User, description string) (*models.Incident, error) {
	if reporter == nil {
		return nil, fmt.Errorf("%w: reporter is required", ErrInvalidInput)
	}
	description = cleanText(description, maxDescriptionLen)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	owner, err := s.listings.WithTx(tx).GetOwner(ctx, ref)
	if err != nil {
		return nil, err
	}

	reporterID := reporter.ID
	incident := &models.Incident{
		Listing:     ref,
		Origin:      models.OriginBuyerReport,
		Description: description,
		State:       models.IncidentPending,
		SellerID:    owner,
		ReporterID:  &reporterID,
		CreatedAt:   s.Now(),
	}
	if err := tx.WithContext(ctx).Create(incident).Error; err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}
	return incident, nil
}

// OpenFromModeratorReport opens an incident already assigned to the reporting
// moderator. It stays PENDING until someone assigns or resolves it.
func (s *IncidentService) OpenFromModeratorReport(ctx context.Context, ref models.ListingRef, moderator *models.User, description string) (*models.Incident, error) {
	if !moderator.CanModerate() {
		transitionRejected.WithLabelValues("incident", "forbidden").Inc()
		return nil, fmt.Errorf("%w: only moderators may file moderator reports", ErrForbidden)
	}
	description = cleanText(description, maxDescriptionLen)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	owner, err := s.listings.GetOwner(ctx, ref)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	moderatorID := moderator.ID
	incident := &models.Incident{
		Listing:             ref,
		Origin:              models.OriginModeratorReport,
		Description:         description,
		State:               models.IncidentPending,
		SellerID:            owner,
		ReporterID:          &moderatorID,
		AssignedModeratorID: &moderatorID,
		AssignedAt:          &now,
		CreatedAt:           now,
	}
	if err := s.db.WithContext(ctx).Create(incident).Error; err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	s.opened(ctx, incident)
	return incident, nil
}

// Assign hands an open incident to a moderator and moves it to IN_REVIEW.
// Reassigning an IN_REVIEW incident replaces the previous moderator.
func (s *IncidentService) Assign(ctx context.Context, id uuid.UUID, moderator *models.User) (*models.Incident, error) {
	if !moderator.CanModerate() {
		transitionRejected.WithLabelValues("incident", "forbidden").Inc()
		return nil, fmt.Errorf("%w: assignee is not a moderator", ErrForbidden)
	}

	var incident *models.Incident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		incident, err = s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if !incident.State.Open() {
			return rejectIncident(incident, "assign")
		}

		now := s.Now()
		moderatorID := moderator.ID
		incident.AssignedModeratorID = &moderatorID
		incident.AssignedAt = &now
		incident.State = models.IncidentInReview
		return save(ctx, tx, incident, "assigned_moderator_id", "assigned_at", "state")
	})
	if err != nil {
		return nil, err
	}

	slog.Info("incident assigned",
		"incident_id", incident.ID.String(),
		"actor_id", moderator.ID.String(),
		"action", "incident.assign",
	)
	s.invalidate(ctx)
	return incident, nil
}

// Resolve records the decision and applies it to the listing in the same
// transaction: PROHIBITED takes the listing down, ALLOWED reactivates it.
// The deciding moderator becomes the incident's assignee, so they are the one
// barred from reviewing a later appeal.
func (s *IncidentService) Resolve(ctx context.Context, id uuid.UUID, moderator *models.User, decision models.Decision, comment string) (*models.Incident, error) {
	if !moderator.CanModerate() {
		transitionRejected.WithLabelValues("incident", "forbidden").Inc()
		return nil, fmt.Errorf("%w: resolver is not a moderator", ErrForbidden)
	}
	visibility, err := visibilityFor(decision)
	if err != nil {
		return nil, err
	}
	comment = cleanText(comment, maxCommentLen)

	var incident *models.Incident
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		incident, err = s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if !incident.State.Open() {
			return rejectIncident(incident, "resolve")
		}

		now := s.Now()
		if !incident.AssignedTo(moderator.ID) {
			moderatorID := moderator.ID
			incident.AssignedModeratorID = &moderatorID
			incident.AssignedAt = &now
		}
		incident.Decision = &decision
		incident.ModeratorComment = &comment
		incident.ResolvedAt = &now
		incident.State = models.IncidentResolved
		if err := save(ctx, tx, incident,
			"assigned_moderator_id", "assigned_at", "decision", "moderator_comment", "resolved_at", "state"); err != nil {
			return err
		}
		return s.listings.WithTx(tx).SetVisibility(ctx, incident.Listing, visibility)
	})
	if err != nil {
		return nil, err
	}

	incidentsResolved.WithLabelValues(string(decision)).Inc()
	slog.Info("incident resolved",
		"incident_id", incident.ID.String(),
		"listing_id", incident.Listing.String(),
		"decision", string(decision),
		"actor_id", moderator.ID.String(),
		"action", "incident.resolve",
	)
	s.invalidate(ctx)
	return incident, nil
}

// MarkAppealed moves a RESOLVED incident to APPEALED.
func (s *IncidentService) MarkAppealed(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	var incident *models.Incident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		incident, err = s.markAppealed(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return incident, nil
}

func (s *IncidentService) markAppealed(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Incident, error) {
	incident, err := s.lock(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if incident.State != models.IncidentResolved {
		return nil, rejectIncident(incident, "appeal")
	}
	incident.State = models.IncidentAppealed
	if err := save(ctx, tx, incident, "state"); err != nil {
		return nil, err
	}
	return incident, nil
}

func (s *IncidentService) Get(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	var incident models.Incident
	if err := s.db.WithContext(ctx).First(&incident, "id = ?", id).Error; err != nil {
		return nil, incidentErr(err, id)
	}
	return &incident, nil
}

// ListPending returns PENDING incidents, oldest first.
func (s *IncidentService) ListPending(ctx context.Context) ([]models.Incident, error) {
	return s.find(ctx, scopes.WithState(models.IncidentPending), scopes.OldestFirst)
}

// ListUnassigned returns PENDING incidents nobody has picked up, oldest first.
func (s *IncidentService) ListUnassigned(ctx context.Context) ([]models.Incident, error) {
	return s.find(ctx,
		scopes.WithState(models.IncidentPending),
		func(db *gorm.DB) *gorm.DB { return db.Where("assigned_moderator_id IS NULL") },
		scopes.OldestFirst,
	)
}

func (s *IncidentService) ListByModerator(ctx context.Context, moderatorID uuid.UUID) ([]models.Incident, error) {
	return s.find(ctx, scopes.ForColumn("assigned_moderator_id", moderatorID), scopes.NewestFirst)
}

func (s *IncidentService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Incident, error) {
	return s.find(ctx, scopes.ForColumn("seller_id", sellerID), scopes.NewestFirst)
}

func (s *IncidentService) ListByListing(ctx context.Context, ref models.ListingRef) ([]models.Incident, error) {
	return s.find(ctx, scopes.ForListing(ref), scopes.NewestFirst)
}

// ListByDateRange returns incidents created within [from, to], newest first.
func (s *IncidentService) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Incident, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes start", ErrInvalidInput)
	}
	return s.find(ctx, scopes.CreatedBetween(from.UTC(), to.UTC()), scopes.NewestFirst)
}

// List returns incidents in the given state, or all of them when state is empty.
func (s *IncidentService) List(ctx context.Context, state models.IncidentState, limit, offset int) ([]models.Incident, error) {
	if state != "" && !state.Valid() {
		return nil, fmt.Errorf("%w: unknown incident state %q", ErrInvalidInput, state)
	}
	return s.find(ctx, scopes.WithState(state), scopes.NewestFirst, scopes.Paginate(limit, offset))
}

// HasActiveIncidents reports whether the listing has an incident still awaiting a decision.
func (s *IncidentService) HasActiveIncidents(ctx context.Context, ref models.ListingRef) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Incident{}).
		Scopes(scopes.ForListing(ref)).
		Where("state IN ?", []models.IncidentState{models.IncidentPending, models.IncidentInReview}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count incidents: %w", err)
	}
	return count > 0, nil
}

func (s *IncidentService) find(ctx context.Context, fns ...func(*gorm.DB) *gorm.DB) ([]models.Incident, error) {
	var incidents []models.Incident
	if err := s.db.WithContext(ctx).Scopes(fns...).Find(&incidents).Error; err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return incidents, nil
}

// lock loads the incident and holds its row for the rest of tx.
func (s *IncidentService) lock(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Incident, error) {
	var incident models.Incident
	if err := tx.WithContext(ctx).Scopes(scopes.ForUpdate).First(&incident, "id = ?", id).Error; err != nil {
		return nil, incidentErr(err, id)
	}
	return &incident, nil
}

func (s *IncidentService) opened(ctx context.Context, incident *models.Incident) {
	incidentsOpened.WithLabelValues(string(incident.Origin)).Inc()
	slog.Info("incident opened",
		"incident_id", incident.ID.String(),
		"listing_id", incident.Listing.String(),
		"origin", string(incident.Origin),
		"action", "incident.open",
	)
	s.invalidate(ctx)
}

func (s *IncidentService) invalidate(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}

func visibilityFor(decision models.Decision) (models.Visibility, error) {
	switch decision {
	case models.DecisionProhibited:
		return models.VisibilityProhibited, nil
	case models.DecisionAllowed:
		return models.VisibilityActive, nil
	}
	return "", fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, decision)
}

func rejectIncident(incident *models.Incident, op string) error {
	transitionRejected.WithLabelValues("incident", "invalid_state").Inc()
	return fmt.Errorf("%w: cannot %s incident in state %s", ErrInvalidState, op, incident.State)
}

func incidentErr(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrIncidentNotFound, id)
	}
	return fmt.Errorf("failed to load incident %s: %w", id, err)
}

// save writes only the named lifecycle columns of model.
func save(ctx context.Context, tx *gorm.DB, model interface{}, columns ...string) error {
	if err := tx.WithContext(ctx).Model(model).Select(columns).Updates(model).Error; err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}
