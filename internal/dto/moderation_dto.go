package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	ListingKind string    `json:"listing_kind"`
	ListingID   uuid.UUID `json:"listing_id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
}

type ModeratorReportRequest struct {
	ListingKind string    `json:"listing_kind"`
	ListingID   uuid.UUID `json:"listing_id"`
	Description string    `json:"description"`
}

// AssignRequest names the moderator to assign. A zero ModeratorID assigns the caller.
type AssignRequest struct {
	ModeratorID uuid.UUID `json:"moderator_id"`
}

type ResolveIncidentRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

type CreateAppealRequest struct {
	IncidentID    uuid.UUID `json:"incident_id"`
	Motive        string    `json:"motive"`
	Justification string    `json:"justification"`
}

type ResolveAppealRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

type ModerationStats struct {
	Incidents   map[string]int64 `json:"incidents"`
	Appeals     map[string]int64 `json:"appeals"`
	GeneratedAt time.Time        `json:"generated_at"`
}

type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}
