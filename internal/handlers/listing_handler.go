package handlers

import (
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	listings *services.ListingService
}

func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

func (h *ListingHandler) CreateProduct(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return unauthorized(c)
	}
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	product, err := h.listings.CreateProduct(c.UserContext(), actor, &req)
	if err != nil {
		return fail(c, err, "Failed to create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ListingHandler) CreateService(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return unauthorized(c)
	}
	var req dto.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	service, err := h.listings.CreateService(c.UserContext(), actor, &req)
	if err != nil {
		return fail(c, err, "Failed to create service")
	}
	return c.Status(fiber.StatusCreated).JSON(service)
}

func (h *ListingHandler) ListProducts(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	products, err := h.listings.ListActiveProducts(c.UserContext(), limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch products")
	}
	return list(c, products)
}

func (h *ListingHandler) ListServices(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	services, err := h.listings.ListActiveServices(c.UserContext(), limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch services")
	}
	return list(c, services)
}

func (h *ListingHandler) ListMine(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return unauthorized(c)
	}
	products, services, err := h.listings.ListBySeller(c.UserContext(), actor.ID)
	if err != nil {
		return fail(c, err, "Failed to fetch listings")
	}
	if products == nil {
		products = []models.Product{}
	}
	if services == nil {
		services = []models.Service{}
	}
	return c.JSON(fiber.Map{"products": products, "services": services})
}

// Get hides non-active listings from everyone but their seller and moderators.
func (h *ListingHandler) Get(c *fiber.Ctx) error {
	ref, ok := listingRef(c)
	if !ok {
		return badRequest(c, "Invalid listing")
	}
	listing, err := h.listings.Get(c.UserContext(), ref)
	if err != nil {
		return fail(c, err, "Failed to fetch listing")
	}
	if listing.CurrentVisibility() != models.VisibilityActive {
		actor := middleware.Actor(c)
		if actor == nil || (actor.ID != listing.OwnerID() && !actor.CanModerate()) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "listing not found",
			})
		}
	}
	return c.JSON(listing)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	ref, ok := listingRef(c)
	if !ok {
		return badRequest(c, "Invalid listing")
	}
	var req dto.UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	listing, err := h.listings.Update(c.UserContext(), middleware.Actor(c), ref, &req)
	if err != nil {
		return fail(c, err, "Failed to update listing")
	}
	return c.JSON(listing)
}

func (h *ListingHandler) SetVisibility(c *fiber.Ctx) error {
	ref, ok := listingRef(c)
	if !ok {
		return badRequest(c, "Invalid listing")
	}
	var req dto.VisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	v := models.Visibility(strings.ToUpper(strings.TrimSpace(req.Visibility)))
	listing, err := h.listings.SetOwnVisibility(c.UserContext(), middleware.Actor(c), ref, v)
	if err != nil {
		return fail(c, err, "Failed to update visibility")
	}
	return c.JSON(listing)
}
