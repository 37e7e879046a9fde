package tradingController

import (
	"botportal/config"
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/services"
	"botportal/utils"
	tradingValidator "botportal/validators/trading"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// configView is what the owner sees of a trading config: the API key is masked and
// the secret is never returned.
type configView struct {
	ID            uint            `json:"id"`
	Exchange      string          `json:"exchange"`
	APIKey        string          `json:"apiKey"`
	IsActive      bool            `json:"isActive"`
	BotStatus     string          `json:"botStatus"`
	StopReason    string          `json:"stopReason"`
	TotalTrades   int             `json:"totalTrades"`
	WinningTrades int             `json:"winningTrades"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
	ErrorCount    int             `json:"errorCount"`
	LastError     string          `json:"lastError"`
	LastErrorAt   *time.Time      `json:"lastErrorAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func newConfigView(cfg *models.TradingConfig) configView {
	masked := "****"
	if key, err := utils.DecryptSecret(cfg.APIKey, config.AppConfig.CredentialsKey); err == nil {
		masked = utils.MaskSecret(key)
	}
	return configView{
		ID:            cfg.ID,
		Exchange:      cfg.Exchange,
		APIKey:        masked,
		IsActive:      cfg.IsActive,
		BotStatus:     cfg.BotStatus,
		StopReason:    cfg.StopReason,
		TotalTrades:   cfg.TotalTrades,
		WinningTrades: cfg.WinningTrades,
		TotalProfit:   cfg.TotalProfit,
		ErrorCount:    cfg.ErrorCount,
		LastError:     cfg.LastError,
		LastErrorAt:   cfg.LastErrorAt,
		UpdatedAt:     cfg.UpdatedAt,
	}
}

func GetConfigs(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var configs []models.TradingConfig
	if err := database.Database.Db.Where("user_id = ?", userId).Order("exchange").Find(&configs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch trading configs!", nil)
	}

	views := make([]configView, 0, len(configs))
	for i := range configs {
		views = append(views, newConfigView(&configs[i]))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trading configs.", views)
}

// SaveConfig creates or replaces the credentials for one exchange.
func SaveConfig(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedTradingConfig").(*tradingValidator.ConfigRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	cfg, err := services.SaveTradingConfig(database.Database.Db, userId, services.TradingConfigInput{
		Exchange:  reqData.Exchange,
		APIKey:    strings.TrimSpace(reqData.APIKey),
		APISecret: strings.TrimSpace(reqData.APISecret),
	}, config.AppConfig.CredentialsKey)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to save trading config!")
	}

	logrus.WithFields(logrus.Fields{"userId": userId, "exchange": cfg.Exchange}).Info("Trading credentials saved")
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trading config saved.", newConfigView(cfg))
}

// DeleteConfig removes the credentials for one exchange permanently.
func DeleteConfig(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	exchange := strings.ToLower(c.Params("exchange"))
	result := database.Database.Db.Unscoped().
		Where("user_id = ? AND exchange = ?", userId, exchange).
		Delete(&models.TradingConfig{})
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete trading config!", nil)
	}
	if result.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Trading config not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trading config deleted.", nil)
}
