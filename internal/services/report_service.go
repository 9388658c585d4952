package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/scopes"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxReasonLen = 500

// ReportService is the intake for complaints about listings. Every accepted
// report opens an incident.
type ReportService struct {
	db        *gorm.DB
	incidents *IncidentService

	Now func() time.Time
}

func NewReportService(db *gorm.DB, incidents *IncidentService) *ReportService {
	return &ReportService{
		db:        db,
		incidents: incidents,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitBuyerReport stores the report and opens its BUYER_REPORT incident atomically.
func (s *ReportService) SubmitBuyerReport(ctx context.Context, reporter *models.User, ref models.ListingRef, reason, description string) (*models.Report, *models.Incident, error) {
	if reporter == nil {
		return nil, nil, fmt.Errorf("%w: reporter is required", ErrInvalidInput)
	}
	if !ref.Valid() {
		return nil, nil, fmt.Errorf("%w: invalid listing reference", ErrInvalidInput)
	}
	reason = cleanText(reason, maxReasonLen)
	if reason == "" {
		return nil, nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	description = cleanText(description, maxDescriptionLen)

	summary := reason
	if description != "" {
		summary = reason + ": " + description
	}

	var (
		report   *models.Report
		incident *models.Incident
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		incident, err = s.incidents.openFromBuyerReport(ctx, tx, ref, reporter, summary)
		if err != nil {
			return err
		}
		report = &models.Report{
			ReporterID:  reporter.ID,
			Listing:     ref,
			Reason:      reason,
			Description: description,
			IncidentID:  incident.ID,
			CreatedAt:   s.Now(),
		}
		if err := tx.WithContext(ctx).Create(report).Error; err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("report submitted",
		"listing_id", ref.String(),
		"actor_id", reporter.ID.String(),
		"action", "report.create",
	)
	s.incidents.opened(ctx, incident)
	return report, incident, nil
}

// SubmitModeratorReport opens a MODERATOR_REPORT incident assigned to the reporter.
func (s *ReportService) SubmitModeratorReport(ctx context.Context, moderator *models.User, ref models.ListingRef, description string) (*models.Incident, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("%w: invalid listing reference", ErrInvalidInput)
	}
	return s.incidents.OpenFromModeratorReport(ctx, ref, moderator, description)
}

func (s *ReportService) ListByListing(ctx context.Context, ref models.ListingRef) ([]models.Report, error) {
	return s.find(ctx, scopes.ForListing(ref), scopes.NewestFirst)
}

func (s *ReportService) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error) {
	return s.find(ctx, scopes.ForColumn("reporter_id", reporterID), scopes.NewestFirst)
}

func (s *ReportService) find(ctx context.Context, fns ...func(*gorm.DB) *gorm.DB) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.WithContext(ctx).Scopes(fns...).Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}
