package services

import (
	"botportal/database/dbtest"
	"botportal/models"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewPayment(t *testing.T) {
	t.Run("approving twice is a no-op the second time", func(t *testing.T) {
		db := dbtest.New(t)
		alice := createUser(t, db, "alice@example.com", nil)
		bob := createUser(t, db, "bob@example.com", alice)
		payment := submittedPayment(t, db, bob, "Professional", "tx-twice")

		first, err := ReviewPayment(db, payment.ID, models.PaymentCompleted, "admin", "", testNow)
		require.NoError(t, err)
		assert.False(t, first.AlreadyProcessed)

		second, err := ReviewPayment(db, payment.ID, models.PaymentCompleted, "telegram", "", testNow.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, second.AlreadyProcessed)
		assert.Equal(t, "admin", second.Payment.ReviewedBy)

		var count int64
		require.NoError(t, db.Model(&models.ReferralEarning{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		var reloaded models.User
		reload(t, db, &reloaded, alice.ID)
		assert.Equal(t, "8.00", reloaded.CommissionTotal.StringFixed(2))
	})

	t.Run("rejecting an approved payment is refused", func(t *testing.T) {
		db := dbtest.New(t)
		bob := createUser(t, db, "bob@example.com", nil)
		payment := submittedPayment(t, db, bob, "Starter", "tx-flip")

		_, err := ReviewPayment(db, payment.ID, models.PaymentCompleted, "admin", "", testNow)
		require.NoError(t, err)

		_, err = ReviewPayment(db, payment.ID, models.PaymentFailed, "admin", "wrong", testNow)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		var reloaded models.Payment
		reload(t, db, &reloaded, payment.ID)
		assert.Equal(t, models.PaymentCompleted, reloaded.Status)
	})

	t.Run("unknown payment", func(t *testing.T) {
		db := dbtest.New(t)
		_, err := ReviewPayment(db, 999, models.PaymentCompleted, "admin", "", testNow)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unsupported target status", func(t *testing.T) {
		db := dbtest.New(t)
		_, err := ReviewPayment(db, 1, models.PaymentPending, "admin", "", testNow)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("three failures block payments for a day", func(t *testing.T) {
		db := dbtest.New(t)
		bob := createUser(t, db, "bob@example.com", nil)

		var last *ReviewResult
		for i := 1; i <= MaxConsecutivePaymentFailures; i++ {
			payment := submittedPayment(t, db, bob, "Starter", fmt.Sprintf("tx-bad-%d", i))
			result, err := ReviewPayment(db, payment.ID, models.PaymentFailed, "admin", "not found on chain", testNow)
			require.NoError(t, err)
			if i < MaxConsecutivePaymentFailures {
				assert.False(t, result.UserBlocked)
				assert.Equal(t, i, result.User.FailedPaymentCount)
			}
			last = result
		}
		assert.True(t, last.UserBlocked)

		var reloaded models.User
		reload(t, db, &reloaded, bob.ID)
		require.NotNil(t, reloaded.PaymentBlockedUntil)
		assert.WithinDuration(t, testNow.Add(PaymentBlockDuration), *reloaded.PaymentBlockedUntil, time.Second)
		assert.True(t, reloaded.PaymentBlocked(testNow.Add(time.Hour)))
		assert.False(t, reloaded.PaymentBlocked(testNow.Add(25*time.Hour)))

		_, err := SubmitPayment(db, bob.ID, PaymentInput{
			Amount:        decimal.NewFromInt(40),
			Method:        "BTC",
			TransactionID: "tx-while-blocked",
		}, testNow.Add(time.Hour))
		assert.ErrorIs(t, err, ErrPaymentBlocked)
	})

	t.Run("an approval resets the failure streak", func(t *testing.T) {
		db := dbtest.New(t)
		bob := createUser(t, db, "bob@example.com", nil)

		for i := 0; i < 2; i++ {
			payment := submittedPayment(t, db, bob, "Starter", fmt.Sprintf("tx-f-%d", i))
			_, err := ReviewPayment(db, payment.ID, models.PaymentFailed, "admin", "", testNow)
			require.NoError(t, err)
		}
		good := submittedPayment(t, db, bob, "Starter", "tx-good")
		_, err := ReviewPayment(db, good.ID, models.PaymentCompleted, "admin", "", testNow)
		require.NoError(t, err)

		var reloaded models.User
		reload(t, db, &reloaded, bob.ID)
		assert.Zero(t, reloaded.FailedPaymentCount)
		assert.Nil(t, reloaded.PaymentBlockedUntil)
	})
}

func TestSubmitPayment(t *testing.T) {
	t.Run("duplicate transaction id", func(t *testing.T) {
		db := dbtest.New(t)
		bob := createUser(t, db, "bob@example.com", nil)
		submittedPayment(t, db, bob, "Starter", "tx-dup")

		_, err := SubmitPayment(db, bob.ID, PaymentInput{
			Amount:        decimal.NewFromInt(40),
			Method:        "BTC",
			TransactionID: "tx-dup",
		}, testNow)
		assert.ErrorIs(t, err, ErrDuplicateTransaction)
	})

	t.Run("a failed transaction id may be submitted again", func(t *testing.T) {
		db := dbtest.New(t)
		bob := createUser(t, db, "bob@example.com", nil)
		payment := submittedPayment(t, db, bob, "Starter", "tx-retry")
		_, err := ReviewPayment(db, payment.ID, models.PaymentFailed, "admin", "", testNow)
		require.NoError(t, err)

		_, err = SubmitPayment(db, bob.ID, PaymentInput{
			Amount:        decimal.NewFromInt(40),
			Method:        "BTC",
			TransactionID: "tx-retry",
		}, testNow)
		assert.NoError(t, err)
	})

	t.Run("amount below the plan price", func(t *testing.T) {
		db := dbtest.New(t)
		bob := createUser(t, db, "bob@example.com", nil)
		sub := pendingSubscription(t, db, bob, "Professional", models.PlanTypeQuarterly)

		_, err := SubmitPayment(db, bob.ID, PaymentInput{
			SubscriptionID: &sub.ID,
			Amount:         decimal.NewFromInt(80),
			Method:         "USDT_ERC20",
			TransactionID:  "tx-short",
		}, testNow)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("subscription of another user", func(t *testing.T) {
		db := dbtest.New(t)
		alice := createUser(t, db, "alice@example.com", nil)
		bob := createUser(t, db, "bob@example.com", nil)
		sub := pendingSubscription(t, db, alice, "Starter", models.PlanTypeMonthly)

		_, err := SubmitPayment(db, bob.ID, PaymentInput{
			SubscriptionID: &sub.ID,
			Amount:         decimal.NewFromInt(40),
			Method:         "BTC",
			TransactionID:  "tx-foreign",
		}, testNow)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("subscription already active", func(t *testing.T) {
		db := dbtest.New(t)
		bob := createUser(t, db, "bob@example.com", nil)
		sub := activeSubscription(t, db, bob, "Starter", testNow)

		_, err := SubmitPayment(db, bob.ID, PaymentInput{
			SubscriptionID: &sub.ID,
			Amount:         decimal.NewFromInt(40),
			Method:         "BTC",
			TransactionID:  "tx-late",
		}, testNow)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}
