package adminController

import (
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/services"
	"botportal/validators"
	adminValidator "botportal/validators/admin"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func SubscriptionList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("pagination").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.Subscription{})
	if reqData.Status != "" {
		query = query.Where("status = ?", strings.ToUpper(reqData.Status))
	}
	if reqData.Search != "" {
		query = query.Where("plan_name = ?", reqData.Search)
	}

	var subscriptions []models.Subscription
	total, err := page(query, reqData, &subscriptions)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subscriptions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription List.", validators.PageResponse("subscriptions", subscriptions, total, reqData))
}

// BulkSubscriptions applies one action to many subscriptions. Ids that cannot take the
// action are reported as skipped.
func BulkSubscriptions(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBulk").(*adminValidator.BulkSubscriptionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := services.BulkUpdateSubscriptions(database.Database.Db, reqData.IDs, reqData.Action, actorOf(c), time.Now())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to update subscriptions!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscriptions updated.", result)
}
