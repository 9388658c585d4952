package logging

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestDBHandlerKeepsErrorsAndAuditRecords(t *testing.T) {
	db := openDB(t)
	h := NewDBHandler(db, time.Hour)
	t.Cleanup(h.Stop)

	log := slog.New(h).With("actor_id", "mod-1")
	log.Info("incident assigned", "incident_id", "inc-1", "action", "incident.assign")
	log.Info("plain info is dropped")
	log.Warn("warnings without action are dropped")
	log.Error("resolve failed", "listing_id", "product:abc", "error", "boom", "attempt", 2)
	h.Flush()

	var count int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var audit models.SystemLog
	require.NoError(t, db.First(&audit, "action = ?", "incident.assign").Error)
	assert.Equal(t, "incident.assign", audit.Action)
	require.NotNil(t, audit.IncidentID)
	assert.Equal(t, "inc-1", *audit.IncidentID)
	require.NotNil(t, audit.ActorID)
	assert.Equal(t, "mod-1", *audit.ActorID)

	var failure models.SystemLog
	require.NoError(t, db.First(&failure, "level = ?", "ERROR").Error)
	assert.Equal(t, "ERROR", failure.Level)
	assert.Equal(t, "boom", failure.Error)
	require.NotNil(t, failure.ListingID)
	assert.Equal(t, "product:abc", *failure.ListingID)
	assert.JSONEq(t, `{"attempt":2}`, string(failure.Extra))
}

func TestPurgeBefore(t *testing.T) {
	db := openDB(t)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		{Timestamp: now, Level: "ERROR", Message: "new"},
	}).Error)

	deleted, err := PurgeBefore(db, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Message)
}
