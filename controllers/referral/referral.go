package referralController

import (
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/notifier"
	"botportal/services"
	"botportal/validators"
	referralValidator "botportal/validators/referral"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GetStats summarises the caller's referral account.
func GetStats(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db
	var user models.User
	if err := db.Select("id", "referral_code", "commission_total").First(&user, userId).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	balance, err := services.ReferralBalance(db, userId)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to load referral balance!")
	}

	settings, err := services.CurrentSettings(db)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to load referral settings!")
	}

	var direct int64
	db.Model(&models.User{}).Where("referrer_id = ? AND is_deleted = ?", userId, false).Count(&direct)

	var activeReferrals int64
	db.Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.user_id = users.id AND subscriptions.status = ? AND subscriptions.deleted_at IS NULL", models.SubscriptionActive).
		Where("users.referrer_id = ?", userId).
		Distinct("users.id").
		Count(&activeReferrals)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Referral stats.", fiber.Map{
		"referralCode":    user.ReferralCode,
		"commissionTotal": user.CommissionTotal,
		"directReferrals": direct,
		"activeReferrals": activeReferrals,
		"balance":         balance,
		"level1Percent":   settings.Level1Percent,
		"level2Percent":   settings.Level2Percent,
		"minWithdrawal":   settings.MinWithdrawal,
	})
}

func ListEarnings(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("pagination").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.ReferralEarning{}).
		Where("user_id = ?", userId).
		Session(&gorm.Session{})

	var total int64
	var earnings []models.ReferralEarning
	if err := query.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch earnings!", nil)
	}
	if err := query.Order("created_at DESC").Offset(reqData.Offset()).Limit(reqData.Limit).Find(&earnings).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch earnings!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Earning List.", validators.PageResponse("earnings", earnings, total, reqData))
}

func RequestWithdrawal(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedWithdrawal").(*referralValidator.WithdrawRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	withdrawal, err := services.RequestWithdrawal(db, userId, reqData.Amount, reqData.WalletAddress)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to request withdrawal!")
	}

	var user models.User
	if err := db.Select("id", "email").First(&user, userId).Error; err == nil {
		go func(w models.ReferralWithdrawal) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := notifier.Default.WithdrawalRequested(ctx, &w, &user); err != nil {
				logrus.WithField("withdrawalId", w.ID).Errorf("Withdrawal notification failed: %v", err)
			}
		}(*withdrawal)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Withdrawal requested.", withdrawal)
}

func ListWithdrawals(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("pagination").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.ReferralWithdrawal{}).Where("user_id = ?", userId)
	if reqData.Status != "" {
		query = query.Where("status = ?", reqData.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	var withdrawals []models.ReferralWithdrawal
	if err := query.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch withdrawals!", nil)
	}
	if err := query.Order("created_at DESC").Offset(reqData.Offset()).Limit(reqData.Limit).Find(&withdrawals).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch withdrawals!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawal List.", validators.PageResponse("withdrawals", withdrawals, total, reqData))
}

// ListReferredUsers returns the caller's direct referrals.
func ListReferredUsers(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	type referredUser struct {
		ID        uint      `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"joinedAt"`
	}

	var users []referredUser
	if err := database.Database.Db.Model(&models.User{}).
		Select("id", "name", "created_at").
		Where("referrer_id = ? AND is_deleted = ?", userId, false).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch referred users!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Referred users.", users)
}
