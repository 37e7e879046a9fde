package referralRoutes

import (
	referralController "botportal/controllers/referral"
	"botportal/middleware"
	referralValidator "botportal/validators/referral"

	"github.com/gofiber/fiber/v2"
)

func SetupReferralRoutes(app *fiber.App) {
	referralGroup := app.Group("/referral", middleware.JWTMiddleware)

	referralGroup.Get("/stats", referralController.GetStats)
	referralGroup.Get("/users", referralController.ListReferredUsers)
	referralGroup.Get("/earnings", referralValidator.List(), referralController.ListEarnings)
	referralGroup.Post("/withdraw", referralValidator.Withdraw(), referralController.RequestWithdrawal)
	referralGroup.Get("/withdrawals", referralValidator.List(), referralController.ListWithdrawals)
}
