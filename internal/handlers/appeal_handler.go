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

type AppealHandler struct {
	appeals *services.AppealService
	users   *services.UserService
}

func NewAppealHandler(appeals *services.AppealService, users *services.UserService) *AppealHandler {
	return &AppealHandler{appeals: appeals, users: users}
}

// Create files an appeal as the calling seller.
func (h *AppealHandler) Create(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return unauthorized(c)
	}
	var req dto.CreateAppealRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.IncidentID == uuid.Nil {
		return badRequest(c, "incident_id is required")
	}

	appeal, err := h.appeals.Create(c.UserContext(), req.IncidentID, actor, req.Motive, req.Justification)
	if err != nil {
		return fail(c, err, "Failed to create appeal")
	}
	return c.Status(fiber.StatusCreated).JSON(appeal)
}

func (h *AppealHandler) ListMine(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return unauthorized(c)
	}
	appeals, err := h.appeals.ListBySeller(c.UserContext(), actor.ID)
	if err != nil {
		return fail(c, err, "Failed to fetch appeals")
	}
	return list(c, appeals)
}

func (h *AppealHandler) List(c *fiber.Ctx) error {
	state := models.AppealState(strings.ToUpper(c.Query("state", "")))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	appeals, err := h.appeals.List(c.UserContext(), state, limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch appeals")
	}
	return list(c, appeals)
}

func (h *AppealHandler) ListPending(c *fiber.Ctx) error {
	appeals, err := h.appeals.ListPending(c.UserContext())
	if err != nil {
		return fail(c, err, "Failed to fetch appeals")
	}
	return list(c, appeals)
}

func (h *AppealHandler) ListByReviewer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid moderator ID")
	}
	appeals, err := h.appeals.ListByReviewer(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "Failed to fetch appeals")
	}
	return list(c, appeals)
}

func (h *AppealHandler) ListBySeller(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid seller ID")
	}
	appeals, err := h.appeals.ListBySeller(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "Failed to fetch appeals")
	}
	return list(c, appeals)
}

func (h *AppealHandler) ListByIncident(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid incident ID")
	}
	appeals, err := h.appeals.ListByIncident(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "Failed to fetch appeals")
	}
	return list(c, appeals)
}

func (h *AppealHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid appeal ID")
	}
	appeal, err := h.appeals.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "Failed to fetch appeal")
	}
	return c.JSON(appeal)
}

func (h *AppealHandler) Assign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid appeal ID")
	}
	var req dto.AssignRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	reviewer := middleware.Actor(c)
	if req.ModeratorID != uuid.Nil {
		reviewer, err = h.users.GetByID(c.UserContext(), req.ModeratorID)
		if err != nil {
			return fail(c, err, "Failed to load reviewer")
		}
	}

	appeal, err := h.appeals.Assign(c.UserContext(), id, reviewer)
	if err != nil {
		return fail(c, err, "Failed to assign appeal")
	}
	return c.JSON(appeal)
}

func (h *AppealHandler) Resolve(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid appeal ID")
	}
	var req dto.ResolveAppealRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	decision, ok := models.ParseAppealDecision(req.Decision)
	if !ok {
		return badRequest(c, "Decision must be APPEAL_APPROVED or APPEAL_REJECTED")
	}

	appeal, err := h.appeals.Resolve(c.UserContext(), id, decision, req.Comment)
	if err != nil {
		return fail(c, err, "Failed to resolve appeal")
	}
	return c.JSON(appeal)
}
