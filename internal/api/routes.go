package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	teams := api.Group("/teams", handler.AuthRequired)
	teams.Get("", handler.ListTeams)
	teams.Post("", handler.AdminRequired, handler.CreateTeam)
	teams.Get("/:id/members", handler.ListTeamMembers)
	teams.Get("/:id/hierarchy", handler.GetHierarchy)
	teams.Get("/:id/diagnostics", handler.GetDiagnostics)
	teams.Post("/:id/repair", handler.AdminRequired, handler.RepairTeam)
	teams.Post("/:id/rebuild", handler.AdminRequired, handler.RebuildTeam)

	users := api.Group("/users", handler.AuthRequired, handler.AdminRequired)
	users.Post("", handler.CreateUser)

	activity := api.Group("/activity", handler.AuthRequired)
	activity.Get("", handler.GetActivity)
	activity.Post("/:date", handler.UpsertActivity)

	reports := api.Group("/reports", handler.AuthRequired)
	reports.Get("", handler.GetReport)
}
