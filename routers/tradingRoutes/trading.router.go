package tradingRoutes

import (
	tradingController "botportal/controllers/trading"
	"botportal/middleware"
	tradingValidator "botportal/validators/trading"

	"github.com/gofiber/fiber/v2"
)

func SetupTradingRoutes(app *fiber.App) {
	tradingGroup := app.Group("/trading", middleware.JWTMiddleware)

	tradingGroup.Get("/configs", tradingController.GetConfigs)
	tradingGroup.Post("/config", tradingValidator.SaveConfig(), tradingController.SaveConfig)
	tradingGroup.Delete("/config/:exchange", tradingController.DeleteConfig)
}
