package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is a buyer complaint against a listing. Every report opens an incident.
type Report struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Listing     ListingRef `gorm:"embedded;embeddedPrefix:listing_" json:"listing"`
	Reason      string     `gorm:"not null;size:500" json:"reason"`
	Description string     `gorm:"size:1000" json:"description"`
	IncidentID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"incident_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
