package services

import (
	"botportal/models"
	"botportal/monitoring"
	"botportal/utils"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxBotErrors is the error count at which a config is taken out of rotation.
const MaxBotErrors = 3

// Error types that mean the stored credentials can never work.
var authErrorTypes = map[string]bool{
	"INVALID_API_KEY":   true,
	"INVALID_SIGNATURE": true,
	"PERMISSION_DENIED": true,
	"IP_BANNED":         true,
}

// IsAuthError reports whether the bot error type invalidates the credentials.
func IsAuthError(errorType string) bool {
	return authErrorTypes[strings.ToUpper(errorType)]
}

type TradingConfigInput struct {
	Exchange  string
	APIKey    string
	APISecret string
}

// SaveTradingConfig creates or replaces the user's credentials for one exchange.
// Saving new credentials clears the error state.
func SaveTradingConfig(db *gorm.DB, userID uint, in TradingConfigInput, passphrase string) (*models.TradingConfig, error) {
	exchange := strings.ToLower(strings.TrimSpace(in.Exchange))
	if exchange == "" || in.APIKey == "" || in.APISecret == "" {
		return nil, fmt.Errorf("%w: exchange, apiKey and apiSecret are required", ErrInvalidInput)
	}

	encKey, err := utils.EncryptSecret(in.APIKey, passphrase)
	if err != nil {
		return nil, err
	}
	encSecret, err := utils.EncryptSecret(in.APISecret, passphrase)
	if err != nil {
		return nil, err
	}

	var cfg models.TradingConfig
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND exchange = ?", userID, exchange).First(&cfg).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cfg = models.TradingConfig{
				UserID:      userID,
				Exchange:    exchange,
				BotStatus:   models.BotStatusStopped,
				TotalProfit: decimal.Zero,
			}
		} else if err != nil {
			return fmt.Errorf("load trading config: %w", err)
		}

		cfg.APIKey = encKey
		cfg.APISecret = encSecret
		cfg.IsActive = true
		cfg.StopReason = ""
		cfg.ErrorCount = 0
		cfg.LastError = ""
		cfg.LastErrorAt = nil
		if cfg.BotStatus == models.BotStatusError {
			cfg.BotStatus = models.BotStatusStopped
		}
		return tx.Save(&cfg).Error
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BotUser is one entry of the active-user list handed to the trading bot.
type BotUser struct {
	UserID          uint            `json:"userId"`
	Email           string          `json:"email"`
	Exchange        string          `json:"exchange"`
	APIKey          string          `json:"apiKey"`
	APISecret       string          `json:"apiSecret"`
	PlanName        string          `json:"planName"`
	ProfitLimit     decimal.Decimal `json:"profitLimit"`
	TotalProfit     decimal.Decimal `json:"totalProfit"`
	BotStatus       string          `json:"botStatus"`
	SubscriptionEnd time.Time       `json:"subscriptionEnd"`
}

// ActiveBotUsers lists users holding an ACTIVE, unexpired subscription and an active
// config with credentials, optionally for a single exchange. Configs whose secrets
// fail to decrypt are logged and skipped.
func ActiveBotUsers(db *gorm.DB, exchange string, now time.Time, passphrase string) ([]BotUser, error) {
	query := db.Preload("User").
		Where("is_active = ? AND api_key <> '' AND api_secret <> ''", true)
	if exchange != "" {
		query = query.Where("exchange = ?", strings.ToLower(exchange))
	}

	var configs []models.TradingConfig
	if err := query.Order("user_id").Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("load trading configs: %w", err)
	}
	if len(configs) == 0 {
		return []BotUser{}, nil
	}

	userIDs := make([]uint, 0, len(configs))
	for _, cfg := range configs {
		userIDs = append(userIDs, cfg.UserID)
	}

	var subs []models.Subscription
	if err := db.Where("user_id IN ? AND status = ? AND end_date > ?", userIDs, models.SubscriptionActive, now).
		Order("end_date DESC").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	latest := make(map[uint]models.Subscription, len(subs))
	for _, sub := range subs {
		if _, seen := latest[sub.UserID]; !seen {
			latest[sub.UserID] = sub
		}
	}

	users := make([]BotUser, 0, len(configs))
	for _, cfg := range configs {
		sub, ok := latest[cfg.UserID]
		if !ok || cfg.User.IsDeleted {
			continue
		}

		apiKey, err := utils.DecryptSecret(cfg.APIKey, passphrase)
		if err != nil {
			logrus.WithFields(logrus.Fields{"userId": cfg.UserID, "exchange": cfg.Exchange}).Errorf("Skipping config: %v", err)
			continue
		}
		apiSecret, err := utils.DecryptSecret(cfg.APISecret, passphrase)
		if err != nil {
			logrus.WithFields(logrus.Fields{"userId": cfg.UserID, "exchange": cfg.Exchange}).Errorf("Skipping config: %v", err)
			continue
		}

		users = append(users, BotUser{
			UserID:          cfg.UserID,
			Email:           cfg.User.Email,
			Exchange:        cfg.Exchange,
			APIKey:          apiKey,
			APISecret:       apiSecret,
			PlanName:        sub.PlanName,
			ProfitLimit:     sub.ProfitLimit,
			TotalProfit:     cfg.TotalProfit,
			BotStatus:       cfg.BotStatus,
			SubscriptionEnd: *sub.EndDate,
		})
	}
	return users, nil
}

type TradeReport struct {
	UserID        uint
	Exchange      string
	ProfitPercent decimal.Decimal
}

type TradeResult struct {
	Config       models.TradingConfig
	LimitReached bool
}

func lockConfig(tx *gorm.DB, userID uint, exchange string) (*models.TradingConfig, error) {
	var cfg models.TradingConfig
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND exchange = ?", userID, strings.ToLower(exchange)).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no %s config for user %d", ErrNotFound, exchange, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load trading config: %w", err)
	}
	return &cfg, nil
}

// ReportTrade adds a closed trade to the config statistics. When cumulative profit
// reaches the subscription's profit limit the config is stopped and the active
// subscription expired in the same transaction. A zero limit means unlimited.
func ReportTrade(db *gorm.DB, in TradeReport, now time.Time) (*TradeResult, error) {
	result := &TradeResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		cfg, err := lockConfig(tx, in.UserID, in.Exchange)
		if err != nil {
			return err
		}

		cfg.TotalTrades++
		if in.ProfitPercent.IsPositive() {
			cfg.WinningTrades++
		}
		cfg.TotalProfit = cfg.TotalProfit.Add(in.ProfitPercent)

		var sub models.Subscription
		err = tx.Where("user_id = ? AND status = ? AND end_date > ?", cfg.UserID, models.SubscriptionActive, now).
			Order("end_date DESC").
			First(&sub).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load subscription: %w", err)
		}

		if err == nil && sub.ProfitLimit.IsPositive() && cfg.TotalProfit.GreaterThanOrEqual(sub.ProfitLimit) {
			cfg.IsActive = false
			cfg.BotStatus = models.BotStatusStopped
			cfg.StopReason = models.StopReasonProfitLimit
			result.LimitReached = true

			if err := tx.Model(&models.Subscription{}).
				Where("user_id = ? AND status = ?", cfg.UserID, models.SubscriptionActive).
				Update("status", models.SubscriptionExpired).Error; err != nil {
				return fmt.Errorf("expire subscription: %w", err)
			}
			if err := recordAudit(tx, "bot", "bot.profit_limit", "trading_config", cfg.ID, map[string]interface{}{
				"userId":      cfg.UserID,
				"totalProfit": cfg.TotalProfit.String(),
				"profitLimit": sub.ProfitLimit.String(),
			}); err != nil {
				return err
			}
		}

		if err := tx.Save(cfg).Error; err != nil {
			return fmt.Errorf("save trading config: %w", err)
		}
		result.Config = *cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	monitoring.BotReports.WithLabelValues("trade").Inc()
	return result, nil
}

type ErrorReport struct {
	UserID    uint
	Exchange  string
	ErrorType string
	Message   string
}

// ReportError records a bot error against a config. Authentication errors, or
// MaxBotErrors errors in total, deactivate the config with status "error".
func ReportError(db *gorm.DB, in ErrorReport, now time.Time) (*models.TradingConfig, bool, error) {
	var cfg *models.TradingConfig
	deactivated := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		cfg, err = lockConfig(tx, in.UserID, in.Exchange)
		if err != nil {
			return err
		}

		cfg.ErrorCount++
		cfg.LastError = fmt.Sprintf("[%s] %s", strings.ToUpper(in.ErrorType), in.Message)
		cfg.LastErrorAt = &now

		if IsAuthError(in.ErrorType) || cfg.ErrorCount >= MaxBotErrors {
			cfg.IsActive = false
			cfg.BotStatus = models.BotStatusError
			cfg.StopReason = models.StopReasonError
			deactivated = true
		}

		if err := tx.Save(cfg).Error; err != nil {
			return fmt.Errorf("save trading config: %w", err)
		}
		if deactivated {
			return recordAudit(tx, "bot", "bot.error_deactivate", "trading_config", cfg.ID, map[string]interface{}{
				"userId":     cfg.UserID,
				"errorType":  in.ErrorType,
				"errorCount": cfg.ErrorCount,
			})
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	monitoring.BotReports.WithLabelValues("error").Inc()
	return cfg, deactivated, nil
}

// DeactivateUser stops every config of the user, or only the given exchange's.
func DeactivateUser(db *gorm.DB, userID uint, exchange, actor string) (int64, error) {
	var affected int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Select("id").First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		if err != nil {
			return err
		}

		query := tx.Model(&models.TradingConfig{}).Where("user_id = ?", userID)
		if exchange != "" {
			query = query.Where("exchange = ?", strings.ToLower(exchange))
		}
		update := query.Updates(map[string]interface{}{
			"is_active":   false,
			"bot_status":  models.BotStatusStopped,
			"stop_reason": models.StopReasonDeactivated,
		})
		if update.Error != nil {
			return fmt.Errorf("deactivate configs: %w", update.Error)
		}
		affected = update.RowsAffected

		return recordAudit(tx, actor, "bot.deactivate", "user", userID, map[string]interface{}{
			"exchange": exchange,
			"configs":  affected,
		})
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// UpdateBotStatus sets the run status the bot reports for a user.
func UpdateBotStatus(db *gorm.DB, userID uint, exchange, status string) (int64, error) {
	valid := false
	for _, s := range models.BotStatuses {
		if s == status {
			valid = true
			break
		}
	}
	if !valid {
		return 0, fmt.Errorf("%w: unknown bot status %q", ErrInvalidInput, status)
	}

	query := db.Model(&models.TradingConfig{}).Where("user_id = ?", userID)
	if exchange != "" {
		query = query.Where("exchange = ?", strings.ToLower(exchange))
	}
	update := query.Update("bot_status", status)
	if update.Error != nil {
		return 0, fmt.Errorf("update bot status: %w", update.Error)
	}
	if update.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: no trading config for user %d", ErrNotFound, userID)
	}
	monitoring.BotReports.WithLabelValues("status").Inc()
	return update.RowsAffected, nil
}
