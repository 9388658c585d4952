package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingKind string

const (
	ListingProduct ListingKind = "product"
	ListingService ListingKind = "service"
)

func (k ListingKind) Valid() bool {
	return k == ListingProduct || k == ListingService
}

// ParseListingKind accepts the singular or plural form, case-insensitive.
func ParseListingKind(s string) (ListingKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "product", "products":
		return ListingProduct, true
	case "service", "services":
		return ListingService, true
	}
	return "", false
}

// ListingRef points at exactly one product or service.
type ListingRef struct {
	Kind ListingKind `gorm:"size:20;not null;index" json:"kind"`
	ID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"id"`
}

func (r ListingRef) Valid() bool {
	return r.Kind.Valid() && r.ID != uuid.Nil
}

func (r ListingRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}

type Visibility string

const (
	VisibilityActive     Visibility = "ACTIVE"
	VisibilityHidden     Visibility = "HIDDEN"
	VisibilityProhibited Visibility = "PROHIBITED"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityActive, VisibilityHidden, VisibilityProhibited:
		return true
	}
	return false
}

// Listing is the capability set moderation needs from a product or service.
type Listing interface {
	Ref() ListingRef
	OwnerID() uuid.UUID
	Text() (title, description string)
	CurrentVisibility() Visibility
}

type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	Quantity    int            `gorm:"default:1" json:"quantity"`
	Visibility  Visibility     `gorm:"size:20;not null;default:'ACTIVE';index" json:"visibility"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Product) Ref() ListingRef               { return ListingRef{Kind: ListingProduct, ID: p.ID} }
func (p *Product) OwnerID() uuid.UUID            { return p.SellerID }
func (p *Product) Text() (string, string)        { return p.Name, p.Description }
func (p *Product) CurrentVisibility() Visibility { return p.Visibility }

type Service struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:100;index" json:"category"`
	Price       float64        `json:"price"`
	Visibility  Visibility     `gorm:"size:20;not null;default:'ACTIVE';index" json:"visibility"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Service) Ref() ListingRef               { return ListingRef{Kind: ListingService, ID: s.ID} }
func (s *Service) OwnerID() uuid.UUID            { return s.SellerID }
func (s *Service) Text() (string, string)        { return s.Title, s.Description }
func (s *Service) CurrentVisibility() Visibility { return s.Visibility }
