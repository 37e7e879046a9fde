package services

import (
	"botportal/models"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultSettings apply until an admin saves the first settings version.
func DefaultSettings() models.ReferralSettings {
	return models.ReferralSettings{
		Version:       0,
		Level1Percent: decimal.NewFromInt(10),
		Level2Percent: decimal.NewFromInt(5),
		MinWithdrawal: decimal.NewFromInt(10),
		MaxDepth:      2,
	}
}

// CurrentSettings returns the newest settings version or the defaults.
func CurrentSettings(db *gorm.DB) (models.ReferralSettings, error) {
	var settings models.ReferralSettings
	err := db.Order("version DESC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return models.ReferralSettings{}, fmt.Errorf("load referral settings: %w", err)
	}
	return settings, nil
}

type SettingsInput struct {
	Level1Percent decimal.Decimal
	Level2Percent decimal.Decimal
	MinWithdrawal decimal.Decimal
	MaxDepth      int
}

func (in SettingsInput) validate() error {
	hundred := decimal.NewFromInt(100)
	for _, pct := range []decimal.Decimal{in.Level1Percent, in.Level2Percent} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return fmt.Errorf("%w: percentages must be between 0 and 100", ErrInvalidInput)
		}
	}
	if in.MinWithdrawal.IsNegative() {
		return fmt.Errorf("%w: minimum withdrawal cannot be negative", ErrInvalidInput)
	}
	if in.MaxDepth < 0 || in.MaxDepth > 2 {
		return fmt.Errorf("%w: max depth must be between 0 and 2", ErrInvalidInput)
	}
	return nil
}

// UpdateSettings stores the input as a new settings version.
func UpdateSettings(db *gorm.DB, in SettingsInput, actor string) (models.ReferralSettings, error) {
	if err := in.validate(); err != nil {
		return models.ReferralSettings{}, err
	}

	var saved models.ReferralSettings
	err := db.Transaction(func(tx *gorm.DB) error {
		current, err := CurrentSettings(tx)
		if err != nil {
			return err
		}

		saved = models.ReferralSettings{
			Version:       current.Version + 1,
			Level1Percent: in.Level1Percent,
			Level2Percent: in.Level2Percent,
			MinWithdrawal: in.MinWithdrawal,
			MaxDepth:      in.MaxDepth,
			CreatedBy:     actor,
		}
		if err := tx.Create(&saved).Error; err != nil {
			return fmt.Errorf("save referral settings: %w", err)
		}

		return recordAudit(tx, actor, "settings.update", "referral_settings", saved.ID, map[string]interface{}{
			"version":       saved.Version,
			"level1Percent": saved.Level1Percent.String(),
			"level2Percent": saved.Level2Percent.String(),
			"minWithdrawal": saved.MinWithdrawal.String(),
			"maxDepth":      saved.MaxDepth,
		})
	})
	if err != nil {
		return models.ReferralSettings{}, err
	}
	return saved, nil
}
