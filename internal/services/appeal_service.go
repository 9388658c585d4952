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
	maxMotiveLen        = 1000
	maxJustificationLen = 2000
)

// AppealService lets sellers contest resolved incidents and moderators
// review those appeals.
type AppealService struct {
	db        *gorm.DB
	incidents *IncidentService
	listings  ListingStore
	stats     StatsInvalidator

	Now func() time.Time
}

func NewAppealService(db *gorm.DB, incidents *IncidentService, listings ListingStore, stats StatsInvalidator) *AppealService {
	return &AppealService{
		db:        db,
		incidents: incidents,
		listings:  listings,
		stats:     stats,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create files an appeal against a RESOLVED incident owned by seller and
// moves the incident to APPEALED. Both writes commit together.
func (s *AppealService) Create(ctx context.Context, incidentID uuid.UUID, seller *models.User, motive, justification string) (*models.Appeal, error) {
	if seller == nil {
		return nil, fmt.Errorf("%w: seller is required", ErrInvalidInput)
	}
	motive = cleanText(motive, maxMotiveLen)
	if motive == "" {
		return nil, fmt.Errorf("%w: motive is required", ErrInvalidInput)
	}
	justification = cleanText(justification, maxJustificationLen)

	var appeal *models.Appeal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		incident, err := s.incidents.lock(ctx, tx, incidentID)
		if err != nil {
			return err
		}
		if incident.State != models.IncidentResolved {
			return rejectIncident(incident, "appeal")
		}
		if incident.SellerID != seller.ID {
			transitionRejected.WithLabelValues("appeal", "forbidden").Inc()
			return fmt.Errorf("%w: only the listing's seller may appeal", ErrForbidden)
		}

		appeal = &models.Appeal{
			IncidentID:    incident.ID,
			SellerID:      seller.ID,
			Motive:        motive,
			Justification: justification,
			State:         models.AppealPending,
			CreatedAt:     s.Now(),
		}
		if err := tx.WithContext(ctx).Create(appeal).Error; err != nil {
			return fmt.Errorf("failed to create appeal: %w", err)
		}

		_, err = s.incidents.markAppealed(ctx, tx, incident.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	appealsCreated.Inc()
	slog.Info("appeal created",
		"appeal_id", appeal.ID.String(),
		"incident_id", appeal.IncidentID.String(),
		"actor_id", seller.ID.String(),
		"action", "appeal.create",
	)
	s.invalidate(ctx)
	return appeal, nil
}

// Assign gives the appeal to a reviewer other than the moderator who decided
// the original incident.
func (s *AppealService) Assign(ctx context.Context, id uuid.UUID, reviewer *models.User) (*models.Appeal, error) {
	if !reviewer.CanModerate() {
		transitionRejected.WithLabelValues("appeal", "forbidden").Inc()
		return nil, fmt.Errorf("%w: reviewer is not a moderator", ErrForbidden)
	}

	var appeal *models.Appeal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		appeal, err = s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if appeal.State != models.AppealPending && appeal.State != models.AppealInReview {
			return rejectAppeal(appeal, "assign")
		}

		var incident models.Incident
		if err := tx.WithContext(ctx).First(&incident, "id = ?", appeal.IncidentID).Error; err != nil {
			return incidentErr(err, appeal.IncidentID)
		}
		if incident.AssignedTo(reviewer.ID) {
			transitionRejected.WithLabelValues("appeal", "forbidden").Inc()
			return fmt.Errorf("%w: the moderator who decided the incident cannot review its appeal", ErrForbidden)
		}

		reviewerID := reviewer.ID
		appeal.ReviewerID = &reviewerID
		appeal.State = models.AppealInReview
		return save(ctx, tx, appeal, "reviewer_id", "state")
	})
	if err != nil {
		return nil, err
	}

	slog.Info("appeal assigned",
		"appeal_id", appeal.ID.String(),
		"actor_id", reviewer.ID.String(),
		"action", "appeal.assign",
	)
	s.invalidate(ctx)
	return appeal, nil
}

// Resolve closes an IN_REVIEW appeal. An approval reactivates the listing in
// the same transaction; the incident itself stays APPEALED either way.
func (s *AppealService) Resolve(ctx context.Context, id uuid.UUID, decision models.AppealDecision, comment string) (*models.Appeal, error) {
	var final models.AppealState
	switch decision {
	case models.AppealDecisionApproved:
		final = models.AppealApproved
	case models.AppealDecisionRejected:
		final = models.AppealRejected
	default:
		return nil, fmt.Errorf("%w: unknown appeal decision %q", ErrInvalidInput, decision)
	}
	comment = cleanText(comment, maxCommentLen)

	var appeal *models.Appeal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		appeal, err = s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if appeal.State != models.AppealInReview {
			return rejectAppeal(appeal, "resolve")
		}

		now := s.Now()
		appeal.FinalDecision = &decision
		appeal.ReviewerComment = &comment
		appeal.ReviewedAt = &now
		appeal.State = final
		if err := save(ctx, tx, appeal, "final_decision", "reviewer_comment", "reviewed_at", "state"); err != nil {
			return err
		}
		if final != models.AppealApproved {
			return nil
		}

		var incident models.Incident
		if err := tx.WithContext(ctx).First(&incident, "id = ?", appeal.IncidentID).Error; err != nil {
			return incidentErr(err, appeal.IncidentID)
		}
		return s.listings.WithTx(tx).SetVisibility(ctx, incident.Listing, models.VisibilityActive)
	})
	if err != nil {
		return nil, err
	}

	appealsResolved.WithLabelValues(string(decision)).Inc()
	slog.Info("appeal resolved",
		"appeal_id", appeal.ID.String(),
		"incident_id", appeal.IncidentID.String(),
		"decision", string(decision),
		"action", "appeal.resolve",
	)
	s.invalidate(ctx)
	return appeal, nil
}

func (s *AppealService) Get(ctx context.Context, id uuid.UUID) (*models.Appeal, error) {
	var appeal models.Appeal
	if err := s.db.WithContext(ctx).First(&appeal, "id = ?", id).Error; err != nil {
		return nil, appealErr(err, id)
	}
	return &appeal, nil
}

// ListPending returns PENDING appeals, oldest first.
func (s *AppealService) ListPending(ctx context.Context) ([]models.Appeal, error) {
	return s.find(ctx, scopes.WithState(models.AppealPending), scopes.OldestFirst)
}

func (s *AppealService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Appeal, error) {
	return s.find(ctx, scopes.ForColumn("seller_id", sellerID), scopes.NewestFirst)
}

func (s *AppealService) ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]models.Appeal, error) {
	return s.find(ctx, scopes.ForColumn("reviewer_id", reviewerID), scopes.NewestFirst)
}

func (s *AppealService) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]models.Appeal, error) {
	return s.find(ctx, scopes.ForColumn("incident_id", incidentID), scopes.NewestFirst)
}

// List returns appeals in the given state, or all of them when state is empty.
func (s *AppealService) List(ctx context.Context, state models.AppealState, limit, offset int) ([]models.Appeal, error) {
	if state != "" && !state.Valid() {
		return nil, fmt.Errorf("%w: unknown appeal state %q", ErrInvalidInput, state)
	}
	return s.find(ctx, scopes.WithState(state), scopes.NewestFirst, scopes.Paginate(limit, offset))
}

func (s *AppealService) find(ctx context.Context, fns ...func(*gorm.DB) *gorm.DB) ([]models.Appeal, error) {
	var appeals []models.Appeal
	if err := s.db.WithContext(ctx).Scopes(fns...).Find(&appeals).Error; err != nil {
		return nil, fmt.Errorf("failed to list appeals: %w", err)
	}
	return appeals, nil
}

func (s *AppealService) lock(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Appeal, error) {
	var appeal models.Appeal
	if err := tx.WithContext(ctx).Scopes(scopes.ForUpdate).First(&appeal, "id = ?", id).Error; err != nil {
		return nil, appealErr(err, id)
	}
	return &appeal, nil
}

func (s *AppealService) invalidate(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}

func rejectAppeal(appeal *models.Appeal, op string) error {
	transitionRejected.WithLabelValues("appeal", "invalid_state").Inc()
	return fmt.Errorf("%w: cannot %s appeal in state %s", ErrInvalidState, op, appeal.State)
}

func appealErr(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrAppealNotFound, id)
	}
	return fmt.Errorf("failed to load appeal %s: %w", id, err)
}
