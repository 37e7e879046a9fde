package adminController

import (
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/services"
	"botportal/utils"
	"botportal/validators"
	adminValidator "botportal/validators/admin"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func WithdrawalList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("pagination").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.ReferralWithdrawal{})
	if reqData.Status != "" {
		query = query.Where("status = ?", strings.ToUpper(reqData.Status))
	}

	var withdrawals []models.ReferralWithdrawal
	total, err := page(query, reqData, &withdrawals)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch withdrawals!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawal List.", validators.PageResponse("withdrawals", withdrawals, total, reqData))
}

func UpdateWithdrawal(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid withdrawal id!", nil)
	}

	reqData, ok := c.Locals("validatedWithdrawalStatus").(*adminValidator.WithdrawalStatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	withdrawal, err := services.UpdateWithdrawalStatus(db, id, reqData.Status, actorOf(c), reqData.Note, time.Now())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to update withdrawal!")
	}

	var user models.User
	if err := db.Select("id", "name", "email").First(&user, withdrawal.UserID).Error; err == nil {
		utils.SendWithdrawalStatusEmail(user.Email, user.Name, withdrawal.Amount.StringFixed(2), withdrawal.Status, withdrawal.AdminNote)
	} else {
		logrus.WithField("withdrawalId", id).Errorf("Withdrawal e-mail skipped: %v", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawal updated.", withdrawal)
}
