package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const EarningPaid = "PAID"

// Withdrawal status enum values
const (
	WithdrawalPending    = "PENDING"
	WithdrawalProcessing = "PROCESSING"
	WithdrawalCompleted  = "COMPLETED"
	WithdrawalRejected   = "REJECTED"
)

// ReferralEarning is a one-time commission credited when a referred user's
// subscription becomes active. One row per subscription per level.
type ReferralEarning struct {
	gorm.Model
	UserID         uint            `gorm:"not null;index" json:"userId"`
	ReferredUserID uint            `gorm:"not null;index" json:"referredUserId"`
	SubscriptionID uint            `gorm:"not null;uniqueIndex:idx_earning_sub_level" json:"subscriptionId"`
	Level          int             `gorm:"not null;uniqueIndex:idx_earning_sub_level" json:"level"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"amount"`
	Percentage     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Status         string          `gorm:"type:varchar(20);not null;default:'PAID'" json:"status"`

	ReferredUser User `gorm:"foreignKey:ReferredUserID" json:"-"`
}

func (ReferralEarning) TableName() string {
	return "referral_earnings"
}

type ReferralWithdrawal struct {
	gorm.Model
	UserID        uint            `gorm:"not null;index" json:"userId"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"amount"`
	WalletAddress string          `gorm:"type:varchar(128);not null" json:"walletAddress"`
	Status        string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	AdminNote     string          `gorm:"type:text" json:"adminNote"`
	ProcessedBy   string          `gorm:"type:varchar(100)" json:"processedBy"`
	ProcessedAt   *time.Time      `json:"processedAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ReferralWithdrawal) TableName() string {
	return "referral_withdrawals"
}
