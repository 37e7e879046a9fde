package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BotStatus enum values
const (
	BotStatusRunning = "running"
	BotStatusStopped = "stopped"
	BotStatusPaused  = "paused"
	BotStatusError   = "error"
)

var BotStatuses = []string{BotStatusRunning, BotStatusStopped, BotStatusPaused, BotStatusError}

// StopReason values record why a config was switched off.
const (
	StopReasonProfitLimit = "profit_limit"
	StopReasonExpired     = "expired"
	StopReasonDeactivated = "deactivated"
	StopReasonError       = "error"
)

// TradingConfig holds one user's credentials for one exchange plus the runtime
// statistics reported by the trading bot. API key and secret are stored encrypted.
type TradingConfig struct {
	gorm.Model
	UserID        uint            `gorm:"not null;uniqueIndex:idx_user_exchange" json:"userId"`
	Exchange      string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_user_exchange" json:"exchange"`
	APIKey        string          `gorm:"column:api_key;type:text" json:"-"`
	APISecret     string          `gorm:"column:api_secret;type:text" json:"-"`
	IsActive      bool            `gorm:"default:true" json:"isActive"`
	BotStatus     string          `gorm:"type:varchar(20);default:'stopped'" json:"botStatus"`
	StopReason    string          `gorm:"type:varchar(20)" json:"stopReason"`
	TotalTrades   int             `gorm:"default:0" json:"totalTrades"`
	WinningTrades int             `gorm:"default:0" json:"winningTrades"`
	TotalProfit   decimal.Decimal `gorm:"type:decimal(18,8);not null;default:0" json:"totalProfit"`
	ErrorCount    int             `gorm:"default:0" json:"errorCount"`
	LastError     string          `gorm:"type:text" json:"lastError"`
	LastErrorAt   *time.Time      `json:"lastErrorAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (TradingConfig) TableName() string {
	return "trading_configs"
}

// HasCredentials reports whether both credential fields are populated.
func (t *TradingConfig) HasCredentials() bool {
	return t.APIKey != "" && t.APISecret != ""
}
