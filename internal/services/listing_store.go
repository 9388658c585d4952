package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingStore is what moderation needs from product and service storage.
type ListingStore interface {
	// WithTx returns a store bound to tx so visibility writes commit with the caller.
	WithTx(tx *gorm.DB) ListingStore
	Get(ctx context.Context, ref models.ListingRef) (models.Listing, error)
	GetOwner(ctx context.Context, ref models.ListingRef) (uuid.UUID, error)
	GetText(ctx context.Context, ref models.ListingRef) (title, description string, err error)
	SetVisibility(ctx context.Context, ref models.ListingRef, v models.Visibility) error
}

type GormListingStore struct {
	db *gorm.DB
}

var _ ListingStore = (*GormListingStore)(nil)

func NewGormListingStore(db *gorm.DB) *GormListingStore {
	return &GormListingStore{db: db}
}

func (s *GormListingStore) WithTx(tx *gorm.DB) ListingStore {
	return &GormListingStore{db: tx}
}

func (s *GormListingStore) Get(ctx context.Context, ref models.ListingRef) (models.Listing, error) {
	var listing models.Listing
	switch ref.Kind {
	case models.ListingProduct:
		var p models.Product
		if err := s.db.WithContext(ctx).First(&p, "id = ?", ref.ID).Error; err != nil {
			return nil, listingErr(err, ref)
		}
		listing = &p
	case models.ListingService:
		var svc models.Service
		if err := s.db.WithContext(ctx).First(&svc, "id = ?", ref.ID).Error; err != nil {
			return nil, listingErr(err, ref)
		}
		listing = &svc
	default:
		return nil, fmt.Errorf("%w: unknown listing kind %q", ErrInvalidInput, ref.Kind)
	}
	return listing, nil
}

func (s *GormListingStore) GetOwner(ctx context.Context, ref models.ListingRef) (uuid.UUID, error) {
	l, err := s.Get(ctx, ref)
	if err != nil {
		return uuid.Nil, err
	}
	return l.OwnerID(), nil
}

func (s *GormListingStore) GetText(ctx context.Context, ref models.ListingRef) (string, string, error) {
	l, err := s.Get(ctx, ref)
	if err != nil {
		return "", "", err
	}
	title, description := l.Text()
	return title, description, nil
}

func (s *GormListingStore) SetVisibility(ctx context.Context, ref models.ListingRef, v models.Visibility) error {
	if !v.Valid() {
		return fmt.Errorf("%w: unknown visibility %q", ErrInvalidInput, v)
	}
	var model interface{}
	switch ref.Kind {
	case models.ListingProduct:
		model = &models.Product{}
	case models.ListingService:
		model = &models.Service{}
	default:
		return fmt.Errorf("%w: unknown listing kind %q", ErrInvalidInput, ref.Kind)
	}

	result := s.db.WithContext(ctx).Model(model).Where("id = ?", ref.ID).Update("visibility", v)
	if result.Error != nil {
		return fmt.Errorf("failed to update visibility of %s: %w", ref, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrListingNotFound, ref)
	}
	return nil
}

func listingErr(err error, ref models.ListingRef) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrListingNotFound, ref)
	}
	return fmt.Errorf("failed to load listing %s: %w", ref, err)
}
