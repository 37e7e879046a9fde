package paymentRoutes

import (
	paymentController "botportal/controllers/payment"
	"botportal/middleware"
	paymentValidator "botportal/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payment")

	paymentGroup.Get("/methods", paymentController.PaymentMethods)
	paymentGroup.Post("/submit", paymentValidator.Submit(), middleware.JWTMiddleware, paymentController.SubmitPayment)
	paymentGroup.Get("/list", paymentValidator.List(), middleware.JWTMiddleware, paymentController.ListPayments)
}
