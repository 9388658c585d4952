package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxTitleLen = 200

// ListingService manages products and services on behalf of their sellers and
// runs automatic detection after every create or content update.
type ListingService struct {
	db        *gorm.DB
	listings  ListingStore
	incidents *IncidentService
}

func NewListingService(db *gorm.DB, listings ListingStore, incidents *IncidentService) *ListingService {
	return &ListingService{db: db, listings: listings, incidents: incidents}
}

func (s *ListingService) CreateProduct(ctx context.Context, seller *models.User, req *dto.CreateProductRequest) (*models.Product, error) {
	if seller == nil {
		return nil, fmt.Errorf("%w: seller is required", ErrInvalidInput)
	}
	name := cleanText(req.Name, maxTitleLen)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product := &models.Product{
		SellerID:    seller.ID,
		Name:        name,
		Description: cleanText(req.Description, maxDescriptionLen*5),
		Price:       req.Price,
		Quantity:    quantity,
		Visibility:  models.VisibilityActive,
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.detect(ctx, product)
	return product, nil
}

func (s *ListingService) CreateService(ctx context.Context, seller *models.User, req *dto.CreateServiceRequest) (*models.Service, error) {
	if seller == nil {
		return nil, fmt.Errorf("%w: seller is required", ErrInvalidInput)
	}
	title := cleanText(req.Title, maxTitleLen)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	service := &models.Service{
		SellerID:    seller.ID,
		Title:       title,
		Description: cleanText(req.Description, maxDescriptionLen*5),
		Category:    cleanText(req.Category, 100),
		Price:       req.Price,
		Visibility:  models.VisibilityActive,
	}
	if err := s.db.WithContext(ctx).Create(service).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.detect(ctx, service)
	return service, nil
}

func (s *ListingService) Get(ctx context.Context, ref models.ListingRef) (models.Listing, error) {
	return s.listings.Get(ctx, ref)
}

// Update changes the seller's own listing. A change to the title or
// description triggers a fresh scan.
func (s *ListingService) Update(ctx context.Context, seller *models.User, ref models.ListingRef, req *dto.UpdateListingRequest) (models.Listing, error) {
	listing, err := s.owned(ctx, seller, ref)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	textChanged := false
	if req.Title != nil {
		title := cleanText(*req.Title, maxTitleLen)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		column := "title"
		if ref.Kind == models.ListingProduct {
			column = "name"
		}
		updates[column] = title
		textChanged = true
	}
	if req.Description != nil {
		updates["description"] = cleanText(*req.Description, maxDescriptionLen*5)
		textChanged = true
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		updates["price"] = *req.Price
	}
	if len(updates) == 0 {
		return listing, nil
	}

	if err := s.db.WithContext(ctx).Model(listing).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", ref, err)
	}
	listing, err = s.listings.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	if textChanged {
		s.redetect(ctx, listing)
	}
	return listing, nil
}

// SetOwnVisibility lets a seller hide or re-show a listing. Only moderation
// can lift a PROHIBITED listing.
func (s *ListingService) SetOwnVisibility(ctx context.Context, seller *models.User, ref models.ListingRef, v models.Visibility) (models.Listing, error) {
	if v != models.VisibilityActive && v != models.VisibilityHidden {
		return nil, fmt.Errorf("%w: sellers may only set ACTIVE or HIDDEN", ErrInvalidInput)
	}
	listing, err := s.owned(ctx, seller, ref)
	if err != nil {
		return nil, err
	}
	if listing.CurrentVisibility() == models.VisibilityProhibited {
		return nil, fmt.Errorf("%w: listing was prohibited by moderation", ErrForbidden)
	}
	if err := s.listings.SetVisibility(ctx, ref, v); err != nil {
		return nil, err
	}
	return s.listings.Get(ctx, ref)
}

func (s *ListingService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Product, []models.Service, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list products: %w", err)
	}
	var services []models.Service
	if err := s.db.WithContext(ctx).Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&services).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list services: %w", err)
	}
	return products, services, nil
}

// ListActiveProducts is the public catalogue: only ACTIVE products are shown.
func (s *ListingService) ListActiveProducts(ctx context.Context, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("visibility = ?", models.VisibilityActive).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *ListingService) ListActiveServices(ctx context.Context, limit, offset int) ([]models.Service, error) {
	var services []models.Service
	err := s.db.WithContext(ctx).
		Where("visibility = ?", models.VisibilityActive).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&services).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *ListingService) owned(ctx context.Context, seller *models.User, ref models.ListingRef) (models.Listing, error) {
	if seller == nil {
		return nil, fmt.Errorf("%w: seller is required", ErrInvalidInput)
	}
	listing, err := s.listings.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID() != seller.ID {
		return nil, fmt.Errorf("%w: listing belongs to another seller", ErrForbidden)
	}
	return listing, nil
}

// detect runs automatic detection. Failures are logged and counted but never
// fail the listing write that triggered them.
func (s *ListingService) detect(ctx context.Context, listing models.Listing) {
	defer func() {
		if r := recover(); r != nil {
			scanFailures.Inc()
			slog.Error("automatic detection panicked",
				"listing_id", listing.Ref().String(),
				"panic", fmt.Sprint(r),
			)
		}
	}()

	if _, err := s.incidents.OpenAutomatic(ctx, listing); err != nil {
		scanFailures.Inc()
		slog.Error("automatic detection failed",
			"listing_id", listing.Ref().String(),
			"error", err,
		)
	}
}

// redetect scans edited text unless the listing already has an incident
// waiting in the queue.
func (s *ListingService) redetect(ctx context.Context, listing models.Listing) {
	active, err := s.incidents.HasActiveIncidents(ctx, listing.Ref())
	if err != nil {
		slog.Error("active incident check failed",
			"listing_id", listing.Ref().String(),
			"error", err,
		)
	}
	if active {
		return
	}
	s.detect(ctx, listing)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
