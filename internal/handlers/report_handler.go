package handlers

import (
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// CreateReport files a buyer report and returns it with the incident it opened.
func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return unauthorized(c)
	}
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	kind, ok := models.ParseListingKind(req.ListingKind)
	if !ok {
		return badRequest(c, "listing_kind must be product or service")
	}

	ref := models.ListingRef{Kind: kind, ID: req.ListingID}
	report, incident, err := h.reports.SubmitBuyerReport(c.UserContext(), actor, ref, req.Reason, req.Description)
	if err != nil {
		return fail(c, err, "Failed to create report")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"report":   report,
		"incident": incident,
	})
}

// CreateModeratorReport opens an incident assigned to the calling moderator.
func (h *ReportHandler) CreateModeratorReport(c *fiber.Ctx) error {
	var req dto.ModeratorReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	kind, ok := models.ParseListingKind(req.ListingKind)
	if !ok {
		return badRequest(c, "listing_kind must be product or service")
	}

	ref := models.ListingRef{Kind: kind, ID: req.ListingID}
	incident, err := h.reports.SubmitModeratorReport(c.UserContext(), middleware.Actor(c), ref, req.Description)
	if err != nil {
		return fail(c, err, "Failed to create report")
	}
	return c.Status(fiber.StatusCreated).JSON(incident)
}

func (h *ReportHandler) ListByListing(c *fiber.Ctx) error {
	ref, ok := listingRef(c)
	if !ok {
		return badRequest(c, "Invalid listing")
	}
	reports, err := h.reports.ListByListing(c.UserContext(), ref)
	if err != nil {
		return fail(c, err, "Failed to fetch reports")
	}
	return list(c, reports)
}

func (h *ReportHandler) ListMine(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return unauthorized(c)
	}
	reports, err := h.reports.ListByReporter(c.UserContext(), actor.ID)
	if err != nil {
		return fail(c, err, "Failed to fetch reports")
	}
	return list(c, reports)
}
