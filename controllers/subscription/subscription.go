package subscriptionController

import (
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/services"
	subscriptionValidator "botportal/validators/subscription"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListPlans returns the active plan catalogue. It is public.
func ListPlans(c *fiber.Ctx) error {
	var plans []models.Plan
	if err := database.Database.Db.Where("is_active = ?", true).Order("monthly_price").Find(&plans).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch plans!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Plan List.", plans)
}

// CreateSubscription records a purchase intent. The subscription stays PENDING until
// a payment for it is approved.
func CreateSubscription(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedSubscription").(*subscriptionValidator.CreateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	sub, err := services.CreateSubscription(database.Database.Db, userId, reqData.PlanID, reqData.PlanType)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to create subscription!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Subscription created. Submit a payment to activate it.", sub)
}

func ListSubscriptions(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var subs []models.Subscription
	if err := database.Database.Db.Where("user_id = ?", userId).Order("created_at DESC").Find(&subs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subscriptions!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription List.", subs)
}

func GetActiveSubscription(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var sub models.Subscription
	err := database.Database.Db.
		Where("user_id = ? AND status = ? AND end_date > ?", userId, models.SubscriptionActive, time.Now()).
		Order("end_date DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active subscription.", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subscription!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Active subscription.", fiber.Map{
		"subscription":  sub,
		"daysRemaining": int(time.Until(*sub.EndDate).Hours() / 24),
	})
}
