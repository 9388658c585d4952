package handlers

import (
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IncidentHandler struct {
	incidents *services.IncidentService
	users     *services.UserService
}

func NewIncidentHandler(incidents *services.IncidentService, users *services.UserService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents, users: users}
}

// List serves the moderation dashboard. Supports ?state= and ?limit=&offset=.
func (h *IncidentHandler) List(c *fiber.Ctx) error {
	state := models.IncidentState(strings.ToUpper(c.Query("state", "")))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	incidents, err := h.incidents.List(c.UserContext(), state, limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch incidents")
	}
	return list(c, incidents)
}

// Filter returns incidents created between ?from= and ?to=, both inclusive.
func (h *IncidentHandler) Filter(c *fiber.Ctx) error {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		return badRequest(c, "Both from and to are required")
	}
	start, err := parseDate(from, false)
	if err != nil {
		return badRequest(c, "Invalid from date")
	}
	end, err := parseDate(to, true)
	if err != nil {
		return badRequest(c, "Invalid to date")
	}

	incidents, err := h.incidents.ListByDateRange(c.UserContext(), start, end)
	if err != nil {
		return fail(c, err, "Failed to fetch incidents")
	}
	return list(c, incidents)
}

func (h *IncidentHandler) ListPending(c *fiber.Ctx) error {
	incidents, err := h.incidents.ListPending(c.UserContext())
	if err != nil {
		return fail(c, err, "Failed to fetch incidents")
	}
	return list(c, incidents)
}

func (h *IncidentHandler) ListUnassigned(c *fiber.Ctx) error {
	incidents, err := h.incidents.ListUnassigned(c.UserContext())
	if err != nil {
		return fail(c, err, "Failed to fetch incidents")
	}
	return list(c, incidents)
}

func (h *IncidentHandler) ListByModerator(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid moderator ID")
	}
	incidents, err := h.incidents.ListByModerator(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "Failed to fetch incidents")
	}
	return list(c, incidents)
}

func (h *IncidentHandler) ListBySeller(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid seller ID")
	}
	incidents, err := h.incidents.ListBySeller(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "Failed to fetch incidents")
	}
	return list(c, incidents)
}

// ListMine returns incidents against the caller's listings.
func (h *IncidentHandler) ListMine(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return unauthorized(c)
	}
	incidents, err := h.incidents.ListBySeller(c.UserContext(), actor.ID)
	if err != nil {
		return fail(c, err, "Failed to fetch incidents")
	}
	return list(c, incidents)
}

func (h *IncidentHandler) ListByListing(c *fiber.Ctx) error {
	ref, ok := listingRef(c)
	if !ok {
		return badRequest(c, "Invalid listing")
	}
	incidents, err := h.incidents.ListByListing(c.UserContext(), ref)
	if err != nil {
		return fail(c, err, "Failed to fetch incidents")
	}
	return list(c, incidents)
}

func (h *IncidentHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid incident ID")
	}
	incident, err := h.incidents.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "Failed to fetch incident")
	}
	return c.JSON(incident)
}

// Assign assigns the incident to moderator_id, or to the caller when omitted.
func (h *IncidentHandler) Assign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid incident ID")
	}
	var req dto.AssignRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	moderator, err := h.assignee(c, req.ModeratorID)
	if err != nil {
		return fail(c, err, "Failed to load moderator")
	}

	incident, err := h.incidents.Assign(c.UserContext(), id, moderator)
	if err != nil {
		return fail(c, err, "Failed to assign incident")
	}
	return c.JSON(incident)
}

func (h *IncidentHandler) Resolve(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid incident ID")
	}
	var req dto.ResolveIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	decision, ok := models.ParseDecision(req.Decision)
	if !ok {
		return badRequest(c, "Decision must be ALLOWED or PROHIBITED")
	}

	incident, err := h.incidents.Resolve(c.UserContext(), id, middleware.Actor(c), decision, req.Comment)
	if err != nil {
		return fail(c, err, "Failed to resolve incident")
	}
	return c.JSON(incident)
}

func (h *IncidentHandler) assignee(c *fiber.Ctx, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return middleware.Actor(c), nil
	}
	return h.users.GetByID(c.UserContext(), id)
}
