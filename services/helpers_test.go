package services

import (
	"botportal/models"
	"botportal/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func createUser(t *testing.T, db *gorm.DB, email string, referrer *models.User) *models.User {
	t.Helper()

	code, err := utils.GenerateReferralCode(db)
	require.NoError(t, err)

	user := models.User{
		Name:         email,
		Email:        email,
		Role:         models.RoleUser,
		Password:     "hash",
		ReferralCode: code,
	}
	if referrer != nil {
		user.ReferrerID = &referrer.ID
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func findPlan(t *testing.T, db *gorm.DB, name string) models.Plan {
	t.Helper()
	var plan models.Plan
	require.NoError(t, db.Where("name = ?", name).First(&plan).Error)
	return plan
}

func pendingSubscription(t *testing.T, db *gorm.DB, user *models.User, planName, planType string) *models.Subscription {
	t.Helper()
	plan := findPlan(t, db, planName)
	sub, err := CreateSubscription(db, user.ID, plan.ID, planType)
	require.NoError(t, err)
	return sub
}

// submittedPayment creates a PENDING subscription and a PENDING payment covering it.
func submittedPayment(t *testing.T, db *gorm.DB, user *models.User, planName, txid string) *models.Payment {
	t.Helper()
	sub := pendingSubscription(t, db, user, planName, models.PlanTypeMonthly)
	payment, err := SubmitPayment(db, user.ID, PaymentInput{
		SubscriptionID: &sub.ID,
		Amount:         sub.Price,
		Method:         "USDT_TRC20",
		WalletAddress:  "TXyzWallet",
		TransactionID:  txid,
	}, testNow)
	require.NoError(t, err)
	return payment
}

func activeSubscription(t *testing.T, db *gorm.DB, user *models.User, planName string, start time.Time) *models.Subscription {
	t.Helper()
	sub := pendingSubscription(t, db, user, planName, models.PlanTypeMonthly)
	activated, _, err := activateSubscription(db, sub, start, DefaultSettings())
	require.NoError(t, err)
	require.True(t, activated)
	return sub
}

func reload(t *testing.T, db *gorm.DB, dest interface{}, id uint) {
	t.Helper()
	require.NoError(t, db.First(dest, id).Error)
}
