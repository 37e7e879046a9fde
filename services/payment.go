package services

import (
	"botportal/models"
	"botportal/monitoring"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MaxConsecutivePaymentFailures = 3
	PaymentBlockDuration          = 24 * time.Hour
)

type PaymentInput struct {
	SubscriptionID *uint
	Amount         decimal.Decimal
	Method         string
	WalletAddress  string
	TransactionID  string
}

// SubmitPayment records a PENDING payment for later review.
func SubmitPayment(db *gorm.DB, userID uint, in PaymentInput, now time.Time) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	var payment models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = ?", userID, false).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user.PaymentBlocked(now) {
			return fmt.Errorf("%w until %s", ErrPaymentBlocked, user.PaymentBlockedUntil.UTC().Format(time.RFC3339))
		}

		var duplicates int64
		if err := tx.Model(&models.Payment{}).
			Where("transaction_id = ? AND status <> ?", in.TransactionID, models.PaymentFailed).
			Count(&duplicates).Error; err != nil {
			return fmt.Errorf("check transaction id: %w", err)
		}
		if duplicates > 0 {
			return ErrDuplicateTransaction
		}

		if in.SubscriptionID != nil {
			var sub models.Subscription
			err := tx.Where("id = ? AND user_id = ?", *in.SubscriptionID, userID).First(&sub).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: subscription %d", ErrNotFound, *in.SubscriptionID)
			}
			if err != nil {
				return fmt.Errorf("load subscription: %w", err)
			}
			if sub.Status != models.SubscriptionPending {
				return fmt.Errorf("%w: subscription is %s", ErrInvalidTransition, sub.Status)
			}
			if in.Amount.LessThan(sub.Price) {
				return fmt.Errorf("%w: amount is below the plan price %s", ErrInvalidInput, sub.Price.StringFixed(2))
			}
		}

		payment = models.Payment{
			UserID:         userID,
			SubscriptionID: in.SubscriptionID,
			Amount:         in.Amount,
			Method:         in.Method,
			WalletAddress:  in.WalletAddress,
			TransactionID:  in.TransactionID,
			Status:         models.PaymentPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ReviewResult describes what a payment review changed.
type ReviewResult struct {
	Payment          models.Payment
	User             models.User
	Subscription     *models.Subscription
	Earnings         []models.ReferralEarning
	AlreadyProcessed bool
	UserBlocked      bool
}

// ReviewPayment moves a PENDING payment to COMPLETED or FAILED. Approval activates the
// linked subscription and posts commissions; rejection counts toward the payment
// lockout. Everything commits together. Repeating the same decision is a no-op with
// AlreadyProcessed set; the opposite decision fails with ErrInvalidTransition.
func ReviewPayment(db *gorm.DB, paymentID uint, status, actor, note string, now time.Time) (*ReviewResult, error) {
	if status != models.PaymentCompleted && status != models.PaymentFailed {
		return nil, fmt.Errorf("%w: status must be %s or %s", ErrInvalidInput, models.PaymentCompleted, models.PaymentFailed)
	}

	result := &ReviewResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentPending).
			Updates(map[string]interface{}{
				"status":      status,
				"reviewed_by": actor,
				"reviewed_at": now,
				"review_note": note,
			})
		if update.Error != nil {
			return fmt.Errorf("update payment: %w", update.Error)
		}

		err := tx.First(&result.Payment, paymentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: payment %d", ErrNotFound, paymentID)
		}
		if err != nil {
			return fmt.Errorf("load payment: %w", err)
		}

		if update.RowsAffected == 0 {
			if result.Payment.Status == status {
				result.AlreadyProcessed = true
				return nil
			}
			return fmt.Errorf("%w: payment %d is already %s", ErrInvalidTransition, paymentID, result.Payment.Status)
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&result.User, result.Payment.UserID).Error; err != nil {
			return fmt.Errorf("load payment owner: %w", err)
		}

		if status == models.PaymentCompleted {
			if err := completePayment(tx, result, now); err != nil {
				return err
			}
		} else if err := failPayment(tx, result, now); err != nil {
			return err
		}

		return recordAudit(tx, actor, "payment.review", "payment", paymentID, map[string]interface{}{
			"status":      status,
			"note":        note,
			"userId":      result.User.ID,
			"earnings":    len(result.Earnings),
			"userBlocked": result.UserBlocked,
		})
	})
	if err != nil {
		return nil, err
	}
	if !result.AlreadyProcessed {
		monitoring.PaymentsReviewed.WithLabelValues(status).Inc()
	}
	return result, nil
}

func completePayment(tx *gorm.DB, result *ReviewResult, now time.Time) error {
	if err := tx.Model(&models.User{}).
		Where("id = ?", result.User.ID).
		Update("failed_payment_count", 0).Error; err != nil {
		return fmt.Errorf("reset payment failures: %w", err)
	}
	result.User.FailedPaymentCount = 0

	if result.Payment.SubscriptionID == nil {
		return nil
	}

	settings, err := CurrentSettings(tx)
	if err != nil {
		return err
	}

	var sub models.Subscription
	if err := tx.First(&sub, *result.Payment.SubscriptionID).Error; err != nil {
		return fmt.Errorf("load subscription: %w", err)
	}

	_, earnings, err := activateSubscription(tx, &sub, now, settings)
	if err != nil {
		return err
	}
	result.Subscription = &sub
	result.Earnings = earnings
	return nil
}

func failPayment(tx *gorm.DB, result *ReviewResult, now time.Time) error {
	count := result.User.FailedPaymentCount + 1
	updates := map[string]interface{}{"failed_payment_count": count}

	if count >= MaxConsecutivePaymentFailures {
		until := now.Add(PaymentBlockDuration)
		count = 0
		updates["failed_payment_count"] = count
		updates["payment_blocked_until"] = until
		result.User.PaymentBlockedUntil = &until
		result.UserBlocked = true
	}

	if err := tx.Model(&models.User{}).Where("id = ?", result.User.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("record payment failure: %w", err)
	}
	result.User.FailedPaymentCount = count
	return nil
}
