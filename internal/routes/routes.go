package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Health    *handlers.HealthHandler
	Listings  *handlers.ListingHandler
	Reports   *handlers.ReportHandler
	Incidents *handlers.IncidentHandler
	Appeals   *handlers.AppealHandler
	Stats     *handlers.StatsHandler
	Users     *handlers.UserHandler
}

func Setup(app *fiber.App, cfg *config.Config, actors middleware.ActorLoader, h Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	// Protected routes take the middleware per route so public routes stay public.
	jwt := middleware.JWTProtected(cfg)
	actor := middleware.LoadActor(actors)

	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/auth/me", jwt, actor, h.Auth.Me)

	// Catalogue
	api.Get("/products", h.Listings.ListProducts)
	api.Get("/services", h.Listings.ListServices)
	api.Post("/products", jwt, actor, h.Listings.CreateProduct)
	api.Post("/services", jwt, actor, h.Listings.CreateService)
	api.Get("/listings/mine", jwt, actor, h.Listings.ListMine)
	api.Get("/listings/:kind/:id",
		middleware.OptionalJWT(cfg), middleware.LoadOptionalActor(actors), h.Listings.Get)
	api.Put("/listings/:kind/:id", jwt, actor, h.Listings.Update)
	api.Put("/listings/:kind/:id/visibility", jwt, actor, h.Listings.SetVisibility)

	// Buyer and seller side of moderation
	api.Post("/reports", jwt, actor, h.Reports.CreateReport)
	api.Get("/reports/mine", jwt, actor, h.Reports.ListMine)
	api.Get("/incidents/mine", jwt, actor, h.Incidents.ListMine)
	api.Post("/appeals", jwt, actor, h.Appeals.Create)
	api.Get("/appeals/mine", jwt, actor, h.Appeals.ListMine)

	// Moderation panel
	mod := api.Group("/moderation", jwt, actor, middleware.ModeratorRequired())
	mod.Post("/incidents", h.Reports.CreateModeratorReport)
	mod.Get("/incidents", h.Incidents.List)
	mod.Get("/incidents/pending", h.Incidents.ListPending)
	mod.Get("/incidents/unassigned", h.Incidents.ListUnassigned)
	mod.Get("/incidents/filter", h.Incidents.Filter)
	mod.Get("/incidents/moderator/:id", h.Incidents.ListByModerator)
	mod.Get("/incidents/seller/:id", h.Incidents.ListBySeller)
	mod.Get("/incidents/listing/:kind/:id", h.Incidents.ListByListing)
	mod.Get("/incidents/:id", h.Incidents.Get)
	mod.Get("/incidents/:id/appeals", h.Appeals.ListByIncident)
	mod.Put("/incidents/:id/assign", h.Incidents.Assign)
	mod.Put("/incidents/:id/resolve", h.Incidents.Resolve)

	mod.Get("/appeals", h.Appeals.List)
	mod.Get("/appeals/pending", h.Appeals.ListPending)
	mod.Get("/appeals/seller/:id", h.Appeals.ListBySeller)
	mod.Get("/appeals/moderator/:id", h.Appeals.ListByReviewer)
	mod.Get("/appeals/:id", h.Appeals.Get)
	mod.Put("/appeals/:id/assign", h.Appeals.Assign)
	mod.Put("/appeals/:id/resolve", h.Appeals.Resolve)

	mod.Get("/reports/listing/:kind/:id", h.Reports.ListByListing)
	mod.Get("/stats", h.Stats.Get)

	// Admin (protected + admin required)
	admin := api.Group("/admin", middleware.AdminToken(cfg), jwt, actor, middleware.AdminRequired())
	admin.Put("/users/:id/role", h.Users.SetRole)
}
