package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralSettings is append-only: every update inserts a new version and readers take
// the highest one.
type ReferralSettings struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Version       int             `gorm:"uniqueIndex;not null" json:"version"`
	Level1Percent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"level1Percent"`
	Level2Percent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"level2Percent"`
	MinWithdrawal decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"minWithdrawal"`
	MaxDepth      int             `gorm:"not null" json:"maxDepth"`
	CreatedBy     string          `gorm:"type:varchar(100)" json:"createdBy"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (ReferralSettings) TableName() string {
	return "referral_settings"
}

// LevelPercents returns the commission percent for each level, bounded by MaxDepth.
func (s *ReferralSettings) LevelPercents() []decimal.Decimal {
	levels := []decimal.Decimal{s.Level1Percent, s.Level2Percent}
	if s.MaxDepth >= 0 && s.MaxDepth < len(levels) {
		levels = levels[:s.MaxDepth]
	}
	return levels
}
