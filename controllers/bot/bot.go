package botController

import (
	"botportal/config"
	"botportal/database"
	"botportal/middleware"
	"botportal/services"
	botValidator "botportal/validators/bot"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ActiveUsers hands the bot the decrypted credentials of every user it may trade for.
func ActiveUsers(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedActiveUsers").(*botValidator.ActiveUsersQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	users, err := services.ActiveBotUsers(database.Database.Db, reqData.Exchange, time.Now(), config.AppConfig.CredentialsKey)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to load active users!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Active users.", fiber.Map{
		"users": users,
		"count": len(users),
	})
}

func ReportTrade(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTrade").(*botValidator.TradeRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := services.ReportTrade(database.Database.Db, services.TradeReport{
		UserID:        reqData.UserID,
		Exchange:      reqData.Exchange,
		ProfitPercent: reqData.ProfitPercent,
	}, time.Now())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to record trade!")
	}

	if result.LimitReached {
		logrus.WithFields(logrus.Fields{
			"userId":      reqData.UserID,
			"exchange":    reqData.Exchange,
			"totalProfit": result.Config.TotalProfit.String(),
		}).Info("Profit limit reached, subscription expired")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trade recorded.", fiber.Map{
		"totalTrades":   result.Config.TotalTrades,
		"winningTrades": result.Config.WinningTrades,
		"totalProfit":   result.Config.TotalProfit,
		"isActive":      result.Config.IsActive,
		"limitReached":  result.LimitReached,
	})
}

func ReportError(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBotError").(*botValidator.ErrorRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	cfg, deactivated, err := services.ReportError(database.Database.Db, services.ErrorReport{
		UserID:    reqData.UserID,
		Exchange:  reqData.Exchange,
		ErrorType: reqData.ErrorType,
		Message:   reqData.Message,
	}, time.Now())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to record error!")
	}

	if deactivated {
		logrus.WithFields(logrus.Fields{"userId": cfg.UserID, "exchange": cfg.Exchange}).Warnf("Trading config deactivated: %s", cfg.LastError)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Error recorded.", fiber.Map{
		"errorCount":  cfg.ErrorCount,
		"deactivated": deactivated,
	})
}

// Deactivate stops trading for the user in :userId.
func Deactivate(c *fiber.Ctx) error {
	userId, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil || userId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
	}

	reqData, ok := c.Locals("validatedDeactivate").(*botValidator.DeactivateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	actor, _ := c.Locals("actor").(string)
	affected, err := services.DeactivateUser(database.Database.Db, uint(userId), reqData.Exchange, actor)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to deactivate user!")
	}

	logrus.WithFields(logrus.Fields{"userId": userId, "reason": reqData.Reason}).Info("Trading deactivated by bot")
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trading deactivated.", fiber.Map{"configs": affected})
}

func UpdateStatus(c *fiber.Ctx) error {
	userId, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil || userId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
	}

	reqData, ok := c.Locals("validatedBotStatus").(*botValidator.StatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	affected, err := services.UpdateBotStatus(database.Database.Db, uint(userId), reqData.Exchange, reqData.Status)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to update bot status!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bot status updated.", fiber.Map{"configs": affected})
}
