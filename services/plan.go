package services

import (
	"botportal/models"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PlanInput struct {
	Name           string
	Description    string
	MonthlyPrice   decimal.Decimal
	QuarterlyPrice decimal.Decimal
	ProfitLimit    decimal.Decimal
	IsActive       *bool
}

func (in PlanInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: plan name is required", ErrInvalidInput)
	}
	if in.MonthlyPrice.IsNegative() || in.QuarterlyPrice.IsNegative() || in.ProfitLimit.IsNegative() {
		return fmt.Errorf("%w: prices and profit limit must not be negative", ErrInvalidInput)
	}
	return nil
}

func planDetails(plan *models.Plan) map[string]interface{} {
	return map[string]interface{}{
		"name":           plan.Name,
		"monthlyPrice":   plan.MonthlyPrice.String(),
		"quarterlyPrice": plan.QuarterlyPrice.String(),
		"profitLimit":    plan.ProfitLimit.String(),
		"isActive":       plan.IsActive,
	}
}

// CreatePlan adds a plan to the catalogue. Plans are active unless IsActive says otherwise.
func CreatePlan(db *gorm.DB, in PlanInput, actor string) (*models.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	plan := models.Plan{
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		MonthlyPrice:   in.MonthlyPrice,
		QuarterlyPrice: in.QuarterlyPrice,
		ProfitLimit:    in.ProfitLimit,
		IsActive:       true,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Plan{}).Where("name = ?", plan.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: plan %q already exists", ErrConflict, plan.Name)
		}

		if err := tx.Create(&plan).Error; err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		// A false bool is a zero value and would be replaced by the column default.
		if in.IsActive != nil && !*in.IsActive {
			if err := tx.Model(&plan).Update("is_active", false).Error; err != nil {
				return fmt.Errorf("create plan: %w", err)
			}
			plan.IsActive = false
		}

		return recordAudit(tx, actor, "plan.create", "plan", plan.ID, planDetails(&plan))
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdatePlan replaces a plan's catalogue fields. Existing subscriptions keep the price
// and profit limit they were created with.
func UpdatePlan(db *gorm.DB, id uint, in PlanInput, actor string) (*models.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var plan models.Plan
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&plan, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: plan %d", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("load plan: %w", err)
		}

		var clash int64
		if err := tx.Model(&models.Plan{}).Where("name = ? AND id <> ?", strings.TrimSpace(in.Name), id).Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return fmt.Errorf("%w: plan %q already exists", ErrConflict, in.Name)
		}

		updates := map[string]interface{}{
			"name":            strings.TrimSpace(in.Name),
			"description":     in.Description,
			"monthly_price":   in.MonthlyPrice,
			"quarterly_price": in.QuarterlyPrice,
			"profit_limit":    in.ProfitLimit,
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if err := tx.Model(&plan).Updates(updates).Error; err != nil {
			return fmt.Errorf("update plan: %w", err)
		}
		if err := tx.First(&plan, id).Error; err != nil {
			return err
		}

		return recordAudit(tx, actor, "plan.update", "plan", plan.ID, planDetails(&plan))
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
