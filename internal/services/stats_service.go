package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"gorm.io/gorm"
)

const statsKey = "moderation:stats"

// StatsService reports queue sizes per state. Results are cached until the
// next write or the cache TTL, whichever comes first.
type StatsService struct {
	db    *gorm.DB
	cache cache.Store

	Now func() time.Time
}

var _ StatsInvalidator = (*StatsService)(nil)

func NewStatsService(db *gorm.DB, store cache.Store) *StatsService {
	return &StatsService{
		db:    db,
		cache: store,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *StatsService) Get(ctx context.Context) (*dto.ModerationStats, error) {
	if raw, err := s.cache.Get(ctx, statsKey); err == nil {
		var stats dto.ModerationStats
		if err := json.Unmarshal([]byte(raw), &stats); err == nil {
			return &stats, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("stats cache read failed", "error", err)
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, statsKey, string(raw)); err != nil {
			slog.Warn("stats cache write failed", "error", err)
		}
	}
	return stats, nil
}

// Invalidate drops the cached counts. Errors are logged; the TTL bounds staleness.
func (s *StatsService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, statsKey); err != nil {
		slog.Warn("stats cache invalidation failed", "error", err)
	}
}

func (s *StatsService) compute(ctx context.Context) (*dto.ModerationStats, error) {
	incidents, err := s.countByState(ctx, &models.Incident{})
	if err != nil {
		return nil, err
	}
	appeals, err := s.countByState(ctx, &models.Appeal{})
	if err != nil {
		return nil, err
	}

	stats := &dto.ModerationStats{
		Incidents:   make(map[string]int64, len(models.IncidentStates)),
		Appeals:     make(map[string]int64, len(models.AppealStates)),
		GeneratedAt: s.Now(),
	}
	for _, st := range models.IncidentStates {
		stats.Incidents[string(st)] = incidents[string(st)]
	}
	for _, st := range models.AppealStates {
		stats.Appeals[string(st)] = appeals[string(st)]
	}
	return stats, nil
}

func (s *StatsService) countByState(ctx context.Context, model interface{}) (map[string]int64, error) {
	var rows []struct {
		State string
		Total int64
	}
	err := s.db.WithContext(ctx).Model(model).
		Select("state, count(*) as total").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count by state: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.State] = r.Total
	}
	return counts, nil
}
