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

// Balance summarises a user's referral account.
type Balance struct {
	Earned    decimal.Decimal `json:"earned"`
	Reserved  decimal.Decimal `json:"reserved"`
	Withdrawn decimal.Decimal `json:"withdrawn"`
	Available decimal.Decimal `json:"available"`
}

// ReferralBalance computes the available balance as PAID earnings minus every
// withdrawal that is not REJECTED.
func ReferralBalance(db *gorm.DB, userID uint) (Balance, error) {
	var earnings []models.ReferralEarning
	if err := db.Select("amount").
		Where("user_id = ? AND status = ?", userID, models.EarningPaid).
		Find(&earnings).Error; err != nil {
		return Balance{}, fmt.Errorf("load earnings: %w", err)
	}

	var withdrawals []models.ReferralWithdrawal
	if err := db.Select("amount", "status").
		Where("user_id = ? AND status <> ?", userID, models.WithdrawalRejected).
		Find(&withdrawals).Error; err != nil {
		return Balance{}, fmt.Errorf("load withdrawals: %w", err)
	}

	balance := Balance{Earned: decimal.Zero, Reserved: decimal.Zero, Withdrawn: decimal.Zero}
	for _, e := range earnings {
		balance.Earned = balance.Earned.Add(e.Amount)
	}
	for _, w := range withdrawals {
		if w.Status == models.WithdrawalCompleted {
			balance.Withdrawn = balance.Withdrawn.Add(w.Amount)
		} else {
			balance.Reserved = balance.Reserved.Add(w.Amount)
		}
	}
	balance.Available = balance.Earned.Sub(balance.Reserved).Sub(balance.Withdrawn)
	return balance, nil
}

// RequestWithdrawal creates a PENDING withdrawal after checking the minimum and the
// available balance. The user row is locked for the duration so concurrent requests
// cannot both spend the same balance.
func RequestWithdrawal(db *gorm.DB, userID uint, amount decimal.Decimal, wallet string) (*models.ReferralWithdrawal, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	var withdrawal models.ReferralWithdrawal
	err := db.Transaction(func(tx *gorm.DB) error {
		settings, err := CurrentSettings(tx)
		if err != nil {
			return err
		}
		if amount.LessThan(settings.MinWithdrawal) {
			return fmt.Errorf("%w of %s", ErrBelowMinimum, settings.MinWithdrawal.StringFixed(2))
		}

		var user models.User
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = ?", userID, false).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		balance, err := ReferralBalance(tx, userID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance.Available) {
			return fmt.Errorf("%w: available %s", ErrInsufficientBalance, balance.Available.StringFixed(2))
		}

		withdrawal = models.ReferralWithdrawal{
			UserID:        userID,
			Amount:        amount,
			WalletAddress: wallet,
			Status:        models.WithdrawalPending,
		}
		if err := tx.Create(&withdrawal).Error; err != nil {
			return fmt.Errorf("create withdrawal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	monitoring.WithdrawalsRequested.Inc()
	return &withdrawal, nil
}

var withdrawalTransitions = map[string][]string{
	models.WithdrawalPending:    {models.WithdrawalProcessing, models.WithdrawalCompleted, models.WithdrawalRejected},
	models.WithdrawalProcessing: {models.WithdrawalCompleted, models.WithdrawalRejected},
}

func canTransitionWithdrawal(from, to string) bool {
	for _, next := range withdrawalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateWithdrawalStatus records an admin decision on a withdrawal.
func UpdateWithdrawalStatus(db *gorm.DB, id uint, status, actor, note string, now time.Time) (*models.ReferralWithdrawal, error) {
	switch status {
	case models.WithdrawalProcessing, models.WithdrawalCompleted, models.WithdrawalRejected:
	default:
		return nil, fmt.Errorf("%w: unknown withdrawal status %q", ErrInvalidInput, status)
	}

	var withdrawal models.ReferralWithdrawal
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&withdrawal, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: withdrawal %d", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("load withdrawal: %w", err)
		}

		from := withdrawal.Status
		if !canTransitionWithdrawal(from, status) {
			return fmt.Errorf("%w: withdrawal %d is %s", ErrInvalidTransition, id, from)
		}

		update := tx.Model(&models.ReferralWithdrawal{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{
				"status":       status,
				"admin_note":   note,
				"processed_by": actor,
				"processed_at": now,
			})
		if update.Error != nil {
			return fmt.Errorf("update withdrawal: %w", update.Error)
		}
		if update.RowsAffected == 0 {
			return fmt.Errorf("%w: withdrawal %d changed concurrently", ErrInvalidTransition, id)
		}

		withdrawal.Status = status
		withdrawal.AdminNote = note
		withdrawal.ProcessedBy = actor
		withdrawal.ProcessedAt = &now

		return recordAudit(tx, actor, "withdrawal.update", "referral_withdrawal", id, map[string]interface{}{
			"from":   from,
			"to":     status,
			"amount": withdrawal.Amount.String(),
			"note":   note,
		})
	})
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}
