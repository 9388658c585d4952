package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stepClock advances one second on every read so rows get distinct timestamps.
type stepClock struct {
	t time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type testEnv struct {
	db        *gorm.DB
	clock     *stepClock
	listings  *GormListingStore
	stats     *StatsService
	incidents *IncidentService
	appeals   *AppealService
	reports   *ReportService
	catalog   *ListingService
	users     *UserService

	seller *models.User
	buyer  *models.User
	mod1   *models.User
	mod2   *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	clock := newStepClock()
	listings := NewGormListingStore(db)
	stats := NewStatsService(db, cache.NewMemoryStore(16, time.Minute))
	stats.Now = clock.Now
	scanner := NewContentScanner(ScannerConfig{Terms: config.DefaultProhibitedTerms})

	incidents := NewIncidentService(db, listings, scanner, stats)
	incidents.Now = clock.Now
	appeals := NewAppealService(db, incidents, listings, stats)
	appeals.Now = clock.Now
	reports := NewReportService(db, incidents)
	reports.Now = clock.Now

	env := &testEnv{
		db:        db,
		clock:     clock,
		listings:  listings,
		stats:     stats,
		incidents: incidents,
		appeals:   appeals,
		reports:   reports,
		catalog:   NewListingService(db, listings, incidents),
		users:     NewUserService(db),
	}
	env.seller = env.user(t, "seller", models.RoleUser)
	env.buyer = env.user(t, "buyer", models.RoleUser)
	env.mod1 = env.user(t, "mod1", models.RoleModerator)
	env.mod2 = env.user(t, "mod2", models.RoleAdmin)
	return env
}

func (e *testEnv) user(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Email:    fmt.Sprintf("%s@example.com", name),
		Name:     name,
		Password: "x",
		Role:     role,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

// product inserts a listing directly, without running automatic detection.
func (e *testEnv) product(t *testing.T, name, description string) *models.Product {
	t.Helper()
	p := &models.Product{
		SellerID:    e.seller.ID,
		Name:        name,
		Description: description,
		Price:       10,
		Visibility:  models.VisibilityActive,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) service(t *testing.T, title, description string) *models.Service {
	t.Helper()
	svc := &models.Service{
		SellerID:    e.seller.ID,
		Title:       title,
		Description: description,
		Category:    "general",
		Price:       25,
		Visibility:  models.VisibilityActive,
	}
	require.NoError(t, e.db.Create(svc).Error)
	return svc
}

func (e *testEnv) visibility(t *testing.T, ref models.ListingRef) models.Visibility {
	t.Helper()
	l, err := e.listings.Get(t.Context(), ref)
	require.NoError(t, err)
	return l.CurrentVisibility()
}
