package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubscriptionStatus enum values
const (
	SubscriptionPending   = "PENDING"
	SubscriptionActive    = "ACTIVE"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionCancelled = "CANCELLED"
)

// Billing period enum values
const (
	PlanTypeMonthly   = "MONTHLY"
	PlanTypeQuarterly = "QUARTERLY"
)

type Subscription struct {
	gorm.Model
	UserID      uint            `gorm:"not null;index" json:"userId"`
	PlanID      uint            `gorm:"not null;index" json:"planId"`
	PlanName    string          `gorm:"type:varchar(50);not null" json:"planName"`
	PlanType    string          `gorm:"type:varchar(20);not null;default:'MONTHLY'" json:"planType"`
	Price       decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"price"`
	ProfitLimit decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"profitLimit"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `gorm:"index" json:"endDate"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
