package services

import (
	"botportal/models"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// UnblockUser lifts both the payment-submission block and the login lockout.
func UnblockUser(db *gorm.DB, userID uint, actor string) (*models.User, error) {
	var user models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		if err := tx.Model(&user).Updates(map[string]interface{}{
			"failed_payment_count":  0,
			"payment_blocked_until": nil,
			"failed_login_attempts": 0,
			"is_blocked":            false,
			"blocked_until":         nil,
		}).Error; err != nil {
			return fmt.Errorf("unblock user: %w", err)
		}
		user.FailedPaymentCount = 0
		user.PaymentBlockedUntil = nil
		user.FailedLoginAttempts = 0
		user.IsBlocked = false
		user.BlockedUntil = nil

		return recordAudit(tx, actor, "user.unblock", "user", user.ID, map[string]interface{}{
			"email": user.Email,
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
