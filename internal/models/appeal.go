package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppealState string

const (
	AppealPending  AppealState = "PENDING"
	AppealInReview AppealState = "IN_REVIEW"
	AppealApproved AppealState = "APPROVED"
	AppealRejected AppealState = "REJECTED"
)

var AppealStates = []AppealState{AppealPending, AppealInReview, AppealApproved, AppealRejected}

func (s AppealState) Valid() bool {
	switch s {
	case AppealPending, AppealInReview, AppealApproved, AppealRejected:
		return true
	}
	return false
}

func (s AppealState) Terminal() bool {
	return s == AppealApproved || s == AppealRejected
}

type AppealDecision string

const (
	AppealDecisionApproved AppealDecision = "APPEAL_APPROVED"
	AppealDecisionRejected AppealDecision = "APPEAL_REJECTED"
)

func ParseAppealDecision(s string) (AppealDecision, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "APPEAL_APPROVED", "APELACION_APROBADA":
		return AppealDecisionApproved, true
	case "APPEAL_REJECTED", "APELACION_RECHAZADA":
		return AppealDecisionRejected, true
	}
	return "", false
}

// Appeal is a seller's challenge to a resolved incident.
type Appeal struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	IncidentID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"incident_id"`
	SellerID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	Motive          string          `gorm:"size:1000;not null" json:"motive"`
	Justification   string          `gorm:"size:2000" json:"justification"`
	State           AppealState     `gorm:"size:20;not null;index" json:"state"`
	ReviewerID      *uuid.UUID      `gorm:"type:uuid;index" json:"reviewer_id"`
	ReviewedAt      *time.Time      `json:"reviewed_at"`
	FinalDecision   *AppealDecision `gorm:"size:20" json:"final_decision"`
	ReviewerComment *string         `gorm:"size:1000" json:"reviewer_comment"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (a *Appeal) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
