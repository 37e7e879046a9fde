package adminController

import (
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/services"
	"botportal/validators"
	adminValidator "botportal/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func GetSettings(c *fiber.Ctx) error {
	settings, err := services.CurrentSettings(database.Database.Db)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to load settings!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Referral settings.", settings)
}

// UpdateSettings stores a new settings version; earlier versions stay for the record.
func UpdateSettings(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSettings").(*adminValidator.SettingsRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	settings, err := services.UpdateSettings(database.Database.Db, services.SettingsInput{
		Level1Percent: reqData.Level1Percent,
		Level2Percent: reqData.Level2Percent,
		MinWithdrawal: reqData.MinWithdrawal,
		MaxDepth:      reqData.MaxDepth,
	}, actorOf(c))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to update settings!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Referral settings updated.", settings)
}

func PlanList(c *fiber.Ctx) error {
	var plans []models.Plan
	if err := database.Database.Db.Order("monthly_price").Find(&plans).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch plans!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Plan List.", plans)
}

func planInput(reqData *adminValidator.PlanRequest) services.PlanInput {
	return services.PlanInput{
		Name:           reqData.Name,
		Description:    reqData.Description,
		MonthlyPrice:   reqData.MonthlyPrice,
		QuarterlyPrice: reqData.QuarterlyPrice,
		ProfitLimit:    reqData.ProfitLimit,
		IsActive:       reqData.IsActive,
	}
}

func CreatePlan(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPlan").(*adminValidator.PlanRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	plan, err := services.CreatePlan(database.Database.Db, planInput(reqData), actorOf(c))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to create plan!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Plan created.", plan)
}

func UpdatePlan(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid plan id!", nil)
	}

	reqData, ok := c.Locals("validatedPlan").(*adminValidator.PlanRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	plan, err := services.UpdatePlan(database.Database.Db, id, planInput(reqData), actorOf(c))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to update plan!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Plan updated.", plan)
}

func AuditLogList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("pagination").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.AuditLog{})
	if reqData.Search != "" {
		query = query.Where("action = ?", reqData.Search)
	}

	var logs []models.AuditLog
	total, err := page(query, reqData, &logs)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch audit logs!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Audit Log List.", validators.PageResponse("auditLogs", logs, total, reqData))
}
