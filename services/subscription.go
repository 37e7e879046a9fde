package services

import (
	"botportal/models"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Bulk admin actions on subscriptions
const (
	BulkActivate = "activate"
	BulkCancel   = "cancel"
	BulkExpire   = "expire"
)

// EndDateFor returns the end of a billing period starting at start. Periods are
// calendar months, so Jan 31 + 1 month normalises the same way time.AddDate does.
func EndDateFor(planType string, start time.Time) time.Time {
	if planType == models.PlanTypeQuarterly {
		return start.AddDate(0, 3, 0)
	}
	return start.AddDate(0, 1, 0)
}

// CreateSubscription opens a PENDING subscription priced from the plan.
func CreateSubscription(db *gorm.DB, userID, planID uint, planType string) (*models.Subscription, error) {
	if planType != models.PlanTypeMonthly && planType != models.PlanTypeQuarterly {
		return nil, fmt.Errorf("%w: unknown plan type %q", ErrInvalidInput, planType)
	}

	var plan models.Plan
	err := db.Where("id = ? AND is_active = ?", planID, true).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: plan %d", ErrNotFound, planID)
	}
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}

	sub := models.Subscription{
		UserID:      userID,
		PlanID:      plan.ID,
		PlanName:    plan.Name,
		PlanType:    planType,
		Price:       plan.PriceFor(planType),
		ProfitLimit: plan.ProfitLimit,
		Status:      models.SubscriptionPending,
	}
	if err := db.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return &sub, nil
}

// activateSubscription moves a PENDING subscription to ACTIVE and posts referral
// commissions in the caller's transaction. It reports false when the subscription
// was no longer PENDING.
func activateSubscription(tx *gorm.DB, sub *models.Subscription, now time.Time, settings models.ReferralSettings) (bool, []models.ReferralEarning, error) {
	end := EndDateFor(sub.PlanType, now)
	update := tx.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, models.SubscriptionPending).
		Updates(map[string]interface{}{
			"status":     models.SubscriptionActive,
			"start_date": now,
			"end_date":   end,
		})
	if update.Error != nil {
		return false, nil, fmt.Errorf("activate subscription %d: %w", sub.ID, update.Error)
	}
	if update.RowsAffected == 0 {
		return false, nil, nil
	}

	sub.Status = models.SubscriptionActive
	sub.StartDate = &now
	sub.EndDate = &end

	// A new billing period starts the profit counter from zero. Only configs stopped by
	// the profit limit or by expiry are switched back on.
	if err := tx.Model(&models.TradingConfig{}).
		Where("user_id = ?", sub.UserID).
		Update("total_profit", 0).Error; err != nil {
		return false, nil, fmt.Errorf("reset trading configs: %w", err)
	}
	if err := tx.Model(&models.TradingConfig{}).
		Where("user_id = ? AND is_active = ? AND stop_reason IN ?", sub.UserID, false,
			[]string{models.StopReasonProfitLimit, models.StopReasonExpired}).
		Updates(map[string]interface{}{"is_active": true, "stop_reason": ""}).Error; err != nil {
		return false, nil, fmt.Errorf("restart trading configs: %w", err)
	}

	earnings, err := PostCommissions(tx, sub, settings)
	if err != nil {
		return false, nil, err
	}
	return true, earnings, nil
}

// stopTradingIfUnsubscribed deactivates the user's trading configs when no
// subscription remains active.
func stopTradingIfUnsubscribed(tx *gorm.DB, userID uint, now time.Time) error {
	var active int64
	if err := tx.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ? AND end_date > ?", userID, models.SubscriptionActive, now).
		Count(&active).Error; err != nil {
		return err
	}
	if active > 0 {
		return nil
	}
	return tx.Model(&models.TradingConfig{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"bot_status":  models.BotStatusStopped,
			"stop_reason": models.StopReasonExpired,
		}).Error
}

type BulkResult struct {
	Updated []uint `json:"updated"`
	Skipped []uint `json:"skipped"`
}

// BulkUpdateSubscriptions applies one admin action to many subscriptions in a single
// transaction. Subscriptions whose current status does not allow the action are
// reported as skipped.
func BulkUpdateSubscriptions(db *gorm.DB, ids []uint, action, actor string, now time.Time) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no subscription ids", ErrInvalidInput)
	}
	if action != BulkActivate && action != BulkCancel && action != BulkExpire {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}

	result := &BulkResult{Updated: []uint{}, Skipped: []uint{}}
	err := db.Transaction(func(tx *gorm.DB) error {
		settings, err := CurrentSettings(tx)
		if err != nil {
			return err
		}

		var subs []models.Subscription
		if err := tx.Where("id IN ?", ids).Order("id").Find(&subs).Error; err != nil {
			return fmt.Errorf("load subscriptions: %w", err)
		}
		found := make(map[uint]bool, len(subs))

		for i := range subs {
			sub := &subs[i]
			found[sub.ID] = true

			changed, err := applyBulkAction(tx, sub, action, now, settings)
			if err != nil {
				return err
			}
			if !changed {
				result.Skipped = append(result.Skipped, sub.ID)
				continue
			}
			result.Updated = append(result.Updated, sub.ID)

			if err := recordAudit(tx, actor, "subscription."+action, "subscription", sub.ID, map[string]interface{}{
				"userId": sub.UserID,
				"status": sub.Status,
			}); err != nil {
				return err
			}
		}

		for _, id := range ids {
			if !found[id] {
				result.Skipped = append(result.Skipped, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func applyBulkAction(tx *gorm.DB, sub *models.Subscription, action string, now time.Time, settings models.ReferralSettings) (bool, error) {
	switch action {
	case BulkActivate:
		activated, _, err := activateSubscription(tx, sub, now, settings)
		return activated, err

	case BulkCancel:
		update := tx.Model(&models.Subscription{}).
			Where("id = ? AND status IN ?", sub.ID, []string{models.SubscriptionPending, models.SubscriptionActive}).
			Update("status", models.SubscriptionCancelled)
		if update.Error != nil {
			return false, update.Error
		}
		if update.RowsAffected == 0 {
			return false, nil
		}
		sub.Status = models.SubscriptionCancelled
		return true, stopTradingIfUnsubscribed(tx, sub.UserID, now)

	default:
		update := tx.Model(&models.Subscription{}).
			Where("id = ? AND status = ?", sub.ID, models.SubscriptionActive).
			Update("status", models.SubscriptionExpired)
		if update.Error != nil {
			return false, update.Error
		}
		if update.RowsAffected == 0 {
			return false, nil
		}
		sub.Status = models.SubscriptionExpired
		return true, stopTradingIfUnsubscribed(tx, sub.UserID, now)
	}
}

// ExpireDueSubscriptions expires every ACTIVE subscription whose end date has passed
// and stops trading for users left without one.
func ExpireDueSubscriptions(db *gorm.DB, now time.Time) (int, error) {
	expired := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var due []models.Subscription
		if err := tx.Select("id", "user_id").
			Where("status = ? AND end_date <= ?", models.SubscriptionActive, now).
			Find(&due).Error; err != nil {
			return fmt.Errorf("find due subscriptions: %w", err)
		}
		if len(due) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(due))
		users := make(map[uint]struct{})
		for _, sub := range due {
			ids = append(ids, sub.ID)
			users[sub.UserID] = struct{}{}
		}

		update := tx.Model(&models.Subscription{}).
			Where("id IN ? AND status = ?", ids, models.SubscriptionActive).
			Update("status", models.SubscriptionExpired)
		if update.Error != nil {
			return fmt.Errorf("expire subscriptions: %w", update.Error)
		}
		expired = int(update.RowsAffected)

		for userID := range users {
			if err := stopTradingIfUnsubscribed(tx, userID, now); err != nil {
				return fmt.Errorf("stop trading for user %d: %w", userID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		logrus.WithField("count", expired).Info("Expired due subscriptions")
	}
	return expired, nil
}
