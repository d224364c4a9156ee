package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	api.Post("/gestation/status", handler.GestationStatus)
	api.Get("/gestation/milestones", handler.GestationMilestones)

	auth := api.Group("/auth")
	auth.Get("/setup", handler.SetupStatus)
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.CurrentUser)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	horses := api.Group("/horses", handler.AuthRequired)
	horses.Get("", handler.ListHorses)
	horses.Post("", handler.OwnerOnly, handler.CreateHorse)
	horses.Get("/:id", handler.GetHorse)
	horses.Put("/:id", handler.OwnerOnly, handler.UpdateHorse)
	horses.Delete("/:id", handler.OwnerOnly, handler.DeleteHorse)

	pregnancies := api.Group("/pregnancies", handler.AuthRequired)
	pregnancies.Get("", handler.ListPregnancies)
	pregnancies.Post("", handler.OwnerOnly, handler.CreatePregnancy)
	pregnancies.Get("/:id", handler.GetPregnancy)
	pregnancies.Put("/:id", handler.OwnerOnly, handler.UpdatePregnancy)
	pregnancies.Delete("/:id", handler.OwnerOnly, handler.DeletePregnancy)
	pregnancies.Post("/:id/foaling", handler.OwnerOnly, handler.RecordFoaling)
	pregnancies.Get("/:id/status", handler.PregnancyStatus)

	api.Get("/overview", handler.AuthRequired, handler.Overview)

	viewers := api.Group("/viewers", handler.AuthRequired, handler.OwnerOnly)
	viewers.Get("", handler.ListViewers)
	viewers.Post("", handler.CreateViewer)
	viewers.Delete("/:id", handler.DeleteViewer)

	export := api.Group("/export", handler.AuthRequired, handler.OwnerOnly)
	export.Get("/summary", handler.ExportSummary)
	export.Get("/csv", handler.ExportCSV)
	export.Get("/json", handler.ExportJSON)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
