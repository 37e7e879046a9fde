package paymentController

import (
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/notifier"
	"botportal/services"
	"botportal/validators"
	paymentValidator "botportal/validators/payment"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const notifyTimeout = 30 * time.Second

// SubmitPayment records a manual crypto payment for review and alerts the operator.
func SubmitPayment(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedPayment").(*paymentValidator.SubmitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	payment, err := services.SubmitPayment(db, userId, services.PaymentInput{
		SubscriptionID: reqData.SubscriptionID,
		Amount:         reqData.Amount,
		Method:         reqData.Method,
		WalletAddress:  reqData.WalletAddress,
		TransactionID:  reqData.TransactionID,
	}, time.Now())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to submit payment!")
	}

	var user models.User
	if err := db.First(&user, userId).Error; err == nil {
		if payment.SubscriptionID != nil {
			var sub models.Subscription
			if db.First(&sub, *payment.SubscriptionID).Error == nil {
				payment.Subscription = &sub
			}
		}
		notifySubmitted(db, *payment, user)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment submitted. It will be reviewed shortly.", payment)
}

// notifySubmitted alerts the operator in the background and stores the message id so
// the alert can be edited once the payment is reviewed.
func notifySubmitted(db *gorm.DB, payment models.Payment, user models.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		msgID, err := notifier.Default.PaymentSubmitted(ctx, &payment, &user)
		if err != nil {
			logrus.WithField("paymentId", payment.ID).Errorf("Payment notification failed: %v", err)
			return
		}
		if msgID == 0 {
			return
		}
		if err := db.Model(&models.Payment{}).Where("id = ?", payment.ID).Update("notification_msg_id", msgID).Error; err != nil {
			logrus.WithField("paymentId", payment.ID).Errorf("Error storing notification id: %v", err)
		}
	}()
}

func ListPayments(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("pagination").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.Payment{}).Where("user_id = ?", userId)
	if reqData.Status != "" {
		query = query.Where("status = ?", reqData.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	var payments []models.Payment
	if err := query.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}
	if err := query.Preload("Subscription").
		Order("created_at DESC").
		Offset(reqData.Offset()).
		Limit(reqData.Limit).
		Find(&payments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment List.", validators.PageResponse("payments", payments, total, reqData))
}

// PaymentMethods lists the accepted payment methods.
func PaymentMethods(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment methods.", models.PaymentMethods)
}
