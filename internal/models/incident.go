package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IncidentOrigin string

const (
	OriginAutoDetection   IncidentOrigin = "AUTO_DETECTION"
	OriginBuyerReport     IncidentOrigin = "BUYER_REPORT"
	OriginModeratorReport IncidentOrigin = "MODERATOR_REPORT"
)

type IncidentState string

const (
	IncidentPending  IncidentState = "PENDING"
	IncidentInReview IncidentState = "IN_REVIEW"
	IncidentResolved IncidentState = "RESOLVED"
	IncidentAppealed IncidentState = "APPEALED"
)

// IncidentStates lists every state in lifecycle order.
var IncidentStates = []IncidentState{IncidentPending, IncidentInReview, IncidentResolved, IncidentAppealed}

func (s IncidentState) Valid() bool {
	switch s {
	case IncidentPending, IncidentInReview, IncidentResolved, IncidentAppealed:
		return true
	}
	return false
}

// Open reports whether the incident still awaits a decision.
func (s IncidentState) Open() bool {
	return s == IncidentPending || s == IncidentInReview
}

type Decision string

const (
	DecisionAllowed    Decision = "ALLOWED"
	DecisionProhibited Decision = "PROHIBITED"
)

// ParseDecision also accepts the legacy PRODUCTO_* values sent by older clients.
func ParseDecision(s string) (Decision, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ALLOWED", "PRODUCTO_PERMITIDO":
		return DecisionAllowed, true
	case "PROHIBITED", "PRODUCTO_PROHIBIDO":
		return DecisionProhibited, true
	}
	return "", false
}

// Incident is one moderation case against exactly one listing.
// Decision and ResolvedAt are set only while State is RESOLVED or APPEALED.
type Incident struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Listing             ListingRef     `gorm:"embedded;embeddedPrefix:listing_" json:"listing"`
	Origin              IncidentOrigin `gorm:"size:30;not null;index" json:"origin"`
	Description         string         `gorm:"size:1000" json:"description"`
	DetectionReason     string         `gorm:"size:200" json:"detection_reason,omitempty"`
	State               IncidentState  `gorm:"size:20;not null;index" json:"state"`
	SellerID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	ReporterID          *uuid.UUID     `gorm:"type:uuid;index" json:"reporter_id,omitempty"`
	AssignedModeratorID *uuid.UUID     `gorm:"type:uuid;index" json:"assigned_moderator_id"`
	AssignedAt          *time.Time     `json:"assigned_at"`
	ResolvedAt          *time.Time     `json:"resolved_at"`
	Decision            *Decision      `gorm:"size:20" json:"decision"`
	ModeratorComment    *string        `gorm:"size:1000" json:"moderator_comment"`
	CreatedAt           time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (i *Incident) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// AssignedTo reports whether moderatorID is the incident's assigned moderator.
func (i *Incident) AssignedTo(moderatorID uuid.UUID) bool {
	return i.AssignedModeratorID != nil && *i.AssignedModeratorID == moderatorID
}
