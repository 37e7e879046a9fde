package services

import (
	"botportal/database/dbtest"
	"botportal/models"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// referrerWithEarnings returns a user holding an $8.00 level-1 earning.
func referrerWithEarnings(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	alice := createUser(t, db, "alice@example.com", nil)
	bob := createUser(t, db, "bob@example.com", alice)
	activeSubscription(t, db, bob, "Professional", testNow)
	return alice
}

func lowerMinimum(t *testing.T, db *gorm.DB, min int64) {
	t.Helper()
	_, err := UpdateSettings(db, SettingsInput{
		Level1Percent: decimal.NewFromInt(10),
		Level2Percent: decimal.NewFromInt(5),
		MinWithdrawal: decimal.NewFromInt(min),
		MaxDepth:      2,
	}, "admin")
	require.NoError(t, err)
}

func TestRequestWithdrawal(t *testing.T) {
	t.Run("rejects amounts above the available balance", func(t *testing.T) {
		db := dbtest.New(t)
		alice := referrerWithEarnings(t, db)

		_, err := RequestWithdrawal(db, alice.ID, decimal.NewFromInt(10), "wallet")
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("rejects amounts below the minimum", func(t *testing.T) {
		db := dbtest.New(t)
		alice := referrerWithEarnings(t, db)
		lowerMinimum(t, db, 5)

		_, err := RequestWithdrawal(db, alice.ID, decimal.NewFromInt(4), "wallet")
		assert.ErrorIs(t, err, ErrBelowMinimum)
	})

	t.Run("pending requests reserve balance", func(t *testing.T) {
		db := dbtest.New(t)
		alice := referrerWithEarnings(t, db)
		lowerMinimum(t, db, 5)

		w, err := RequestWithdrawal(db, alice.ID, decimal.NewFromInt(5), "wallet")
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawalPending, w.Status)

		balance, err := ReferralBalance(db, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "8.00", balance.Earned.StringFixed(2))
		assert.Equal(t, "5.00", balance.Reserved.StringFixed(2))
		assert.Equal(t, "3.00", balance.Available.StringFixed(2))

		_, err = RequestWithdrawal(db, alice.ID, decimal.NewFromInt(5), "wallet")
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("rejected requests release balance", func(t *testing.T) {
		db := dbtest.New(t)
		alice := referrerWithEarnings(t, db)
		lowerMinimum(t, db, 5)

		w, err := RequestWithdrawal(db, alice.ID, decimal.NewFromInt(8), "wallet")
		require.NoError(t, err)
		_, err = UpdateWithdrawalStatus(db, w.ID, models.WithdrawalRejected, "admin", "wrong wallet", testNow)
		require.NoError(t, err)

		_, err = RequestWithdrawal(db, alice.ID, decimal.NewFromInt(8), "wallet-2")
		assert.NoError(t, err)
	})

	t.Run("completed withdrawals stay deducted", func(t *testing.T) {
		db := dbtest.New(t)
		alice := referrerWithEarnings(t, db)
		lowerMinimum(t, db, 5)

		w, err := RequestWithdrawal(db, alice.ID, decimal.NewFromInt(6), "wallet")
		require.NoError(t, err)
		_, err = UpdateWithdrawalStatus(db, w.ID, models.WithdrawalCompleted, "admin", "", testNow)
		require.NoError(t, err)

		balance, err := ReferralBalance(db, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "6.00", balance.Withdrawn.StringFixed(2))
		assert.Equal(t, "2.00", balance.Available.StringFixed(2))
	})
}

func TestUpdateWithdrawalStatus(t *testing.T) {
	db := dbtest.New(t)
	alice := referrerWithEarnings(t, db)
	lowerMinimum(t, db, 1)

	w, err := RequestWithdrawal(db, alice.ID, decimal.NewFromInt(2), "wallet")
	require.NoError(t, err)

	t.Run("pending to processing to completed", func(t *testing.T) {
		updated, err := UpdateWithdrawalStatus(db, w.ID, models.WithdrawalProcessing, "admin", "sending", testNow)
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawalProcessing, updated.Status)

		updated, err = UpdateWithdrawalStatus(db, w.ID, models.WithdrawalCompleted, "admin", "sent", testNow)
		require.NoError(t, err)
		assert.Equal(t, "admin", updated.ProcessedBy)
		require.NotNil(t, updated.ProcessedAt)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		_, err := UpdateWithdrawalStatus(db, w.ID, models.WithdrawalRejected, "admin", "", testNow)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := UpdateWithdrawalStatus(db, w.ID, "PAID", "admin", "", testNow)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown withdrawal", func(t *testing.T) {
		_, err := UpdateWithdrawalStatus(db, 404, models.WithdrawalCompleted, "admin", "", testNow)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
