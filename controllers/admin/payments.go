package adminController

import (
	paymentController "botportal/controllers/payment"
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/services"
	"botportal/validators"
	adminValidator "botportal/validators/admin"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// PaymentList lists payments of every user, filtered by status and by TXID or e-mail
// search.
func PaymentList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("pagination").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.Payment{})
	if reqData.Status != "" {
		query = query.Where("payments.status = ?", strings.ToUpper(reqData.Status))
	}
	if search := strings.TrimSpace(reqData.Search); search != "" {
		query = query.Where("payments.transaction_id = ? OR payments.user_id IN (?)", search,
			database.Database.Db.Model(&models.User{}).Select("id").Where("LOWER(email) = ?", strings.ToLower(search)))
	}

	var payments []models.Payment
	total, err := page(query, reqData, &payments, "Subscription")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment List.", validators.PageResponse("payments", payments, total, reqData))
}

// ReviewPayment approves or rejects the payment in :id. Repeating a decision that was
// already applied succeeds without side effects.
func ReviewPayment(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid payment id!", nil)
	}

	reqData, ok := c.Locals("validatedReview").(*adminValidator.PaymentReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	actor := actorOf(c)
	result, err := services.ReviewPayment(database.Database.Db, id, reqData.Status, actor, reqData.Note, time.Now())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to review payment!")
	}

	if result.AlreadyProcessed {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment already processed.", result.Payment)
	}

	paymentController.AfterReview(result)
	logrus.WithFields(logrus.Fields{"paymentId": id, "status": reqData.Status, "actor": actor}).Info("Payment reviewed")

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment reviewed.", fiber.Map{
		"payment":      result.Payment,
		"subscription": result.Subscription,
		"earnings":     result.Earnings,
		"userBlocked":  result.UserBlocked,
	})
}
