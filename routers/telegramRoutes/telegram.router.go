package telegramRoutes

import (
	telegramController "botportal/controllers/telegram"

	"github.com/gofiber/fiber/v2"
)

func SetupTelegramRoutes(app *fiber.App) {
	app.Post("/telegram/webhook", telegramController.Webhook)
}
