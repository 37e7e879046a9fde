package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plan is a named subscription tier. ProfitLimit caps the cumulative profit percent the
// trading bot may realise for a subscriber before the subscription is expired.
type Plan struct {
	gorm.Model
	Name           string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	MonthlyPrice   decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"monthlyPrice"`
	QuarterlyPrice decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"quarterlyPrice"`
	ProfitLimit    decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"profitLimit"`
	IsActive       bool            `gorm:"default:true" json:"isActive"`
}

func (Plan) TableName() string {
	return "plans"
}

// PriceFor returns the plan price for the given billing period.
func (p *Plan) PriceFor(planType string) decimal.Decimal {
	if planType == PlanTypeQuarterly {
		return p.QuarterlyPrice
	}
	return p.MonthlyPrice
}
