package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gestar-hq/gestar-service/internal/api/http/handlers"
	"github.com/gestar-hq/gestar-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Catalogs       *handlers.CatalogsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/log", cfg.Tickets.ListLog)
	tickets.Post("/:id/tasks", cfg.Tickets.CreateTask)
	tickets.Get("/:id/tasks", cfg.Tickets.ListTasks)

	protected.Get("/tasks/pending", cfg.Tickets.ListPendingTasks)
	protected.Patch("/tasks/:id/status", cfg.Tickets.UpdateTaskStatus)

	catalogs := protected.Group("/catalogs")
	catalogs.Get("/categories/tree", cfg.Catalogs.CategoryTree)
	catalogs.Get("/:code/items", cfg.Catalogs.ListItems)
	catalogs.Get("/:code/items/:label/children", cfg.Catalogs.ListChildren)
	catalogs.Post("/:code/items", auth.RequireAdministrator(), cfg.Catalogs.CreateItem)
	protected.Patch("/catalog-items/:id", auth.RequireAdministrator(), cfg.Catalogs.UpdateItem)

	users := protected.Group("/users")
	users.Get("", cfg.Users.ListUsers)
	users.Get("/:id", cfg.Users.GetUser)
	users.Post("", auth.RequireAdministrator(), cfg.Users.CreateUser)
	users.Patch("/:id", auth.RequireAdministrator(), cfg.Users.UpdateUser)
}
