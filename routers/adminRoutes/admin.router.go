package adminRoutes

import (
	adminController "botportal/controllers/admin"
	"botportal/middleware"
	adminValidator "botportal/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.AdminOnly)

	adminGroup.Get("/stats", adminController.Stats)
	adminGroup.Post("/report", adminController.SendReport)
	adminGroup.Get("/audit/logs", adminValidator.List(), adminController.AuditLogList)

	adminGroup.Get("/users", adminValidator.List(), adminController.UserList)
	adminGroup.Patch("/users/:id/unblock", adminController.UnblockUser)

	adminGroup.Get("/payments", adminValidator.List(), adminController.PaymentList)
	adminGroup.Patch("/payments/:id", adminValidator.ReviewPayment(), adminController.ReviewPayment)

	adminGroup.Get("/subscriptions", adminValidator.List(), adminController.SubscriptionList)
	adminGroup.Post("/subscriptions/bulk", adminValidator.BulkSubscriptions(), adminController.BulkSubscriptions)

	adminGroup.Get("/withdrawals", adminValidator.List(), adminController.WithdrawalList)
	adminGroup.Patch("/withdrawals/:id", adminValidator.WithdrawalStatus(), adminController.UpdateWithdrawal)

	adminGroup.Get("/referrals/stats", adminController.ReferralStats)
	adminGroup.Get("/settings", adminController.GetSettings)
	adminGroup.Put("/settings", adminValidator.Settings(), adminController.UpdateSettings)

	adminGroup.Get("/plans", adminController.PlanList)
	adminGroup.Post("/plans", adminValidator.Plan(), adminController.CreatePlan)
	adminGroup.Put("/plans/:id", adminValidator.Plan(), adminController.UpdatePlan)
}
