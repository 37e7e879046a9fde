package subscriptionRoutes

import (
	subscriptionController "botportal/controllers/subscription"
	"botportal/middleware"
	subscriptionValidator "botportal/validators/subscription"

	"github.com/gofiber/fiber/v2"
)

func SetupSubscriptionRoutes(app *fiber.App) {
	app.Get("/plans", subscriptionController.ListPlans)

	subscriptionGroup := app.Group("/subscription")

	subscriptionGroup.Post("/", subscriptionValidator.Create(), middleware.JWTMiddleware, subscriptionController.CreateSubscription)
	subscriptionGroup.Get("/list", middleware.JWTMiddleware, subscriptionController.ListSubscriptions)
	subscriptionGroup.Get("/active", middleware.JWTMiddleware, subscriptionController.GetActiveSubscription)
}
