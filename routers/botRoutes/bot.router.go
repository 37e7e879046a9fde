package botRoutes

import (
	botController "botportal/controllers/bot"
	"botportal/middleware"
	botValidator "botportal/validators/bot"

	"github.com/gofiber/fiber/v2"
)

func SetupBotRoutes(app *fiber.App) {
	botGroup := app.Group("/bot", middleware.BotAuth)

	botGroup.Get("/users/active", botValidator.ActiveUsers(), botController.ActiveUsers)
	botGroup.Post("/trades", botValidator.Trade(), botController.ReportTrade)
	botGroup.Post("/errors", botValidator.Error(), botController.ReportError)
	botGroup.Post("/users/:userId/deactivate", botValidator.Deactivate(), botController.Deactivate)
	botGroup.Patch("/users/:userId/status", botValidator.Status(), botController.UpdateStatus)
}
