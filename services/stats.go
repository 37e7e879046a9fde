package services

import (
	"botportal/models"
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers          int64           `json:"totalUsers"`
	NewUsersToday       int64           `json:"newUsersToday"`
	ActiveSubscriptions int64           `json:"activeSubscriptions"`
	PendingPayments     int64           `json:"pendingPayments"`
	PendingWithdrawals  int64           `json:"pendingWithdrawals"`
	RunningBots         int64           `json:"runningBots"`
	RevenueToday        decimal.Decimal `json:"revenueToday"`
	RevenueThisMonth    decimal.Decimal `json:"revenueThisMonth"`
	RevenueTotal        decimal.Decimal `json:"revenueTotal"`
	CommissionsPaid     decimal.Decimal `json:"commissionsPaid"`
}

// revenueSince sums COMPLETED payments reviewed at or after since. A zero since sums
// every completed payment.
func revenueSince(db *gorm.DB, since time.Time) (decimal.Decimal, error) {
	query := db.Model(&models.Payment{}).Select("amount").Where("status = ?", models.PaymentCompleted)
	if !since.IsZero() {
		query = query.Where("reviewed_at >= ?", since)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

// Stats computes the admin dashboard figures. Day and month boundaries follow the
// location of at.
func Stats(db *gorm.DB, at time.Time) (*DashboardStats, error) {
	clock := now.New(at)
	dayStart := clock.BeginningOfDay()
	monthStart := clock.BeginningOfMonth()

	stats := &DashboardStats{}
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&models.User{}).Where("is_deleted = ? AND role = ?", false, models.RoleUser)},
		{&stats.NewUsersToday, db.Model(&models.User{}).Where("is_deleted = ? AND role = ? AND created_at >= ?", false, models.RoleUser, dayStart)},
		{&stats.ActiveSubscriptions, db.Model(&models.Subscription{}).Where("status = ? AND end_date > ?", models.SubscriptionActive, at)},
		{&stats.PendingPayments, db.Model(&models.Payment{}).Where("status = ?", models.PaymentPending)},
		{&stats.PendingWithdrawals, db.Model(&models.ReferralWithdrawal{}).Where("status IN ?", []string{models.WithdrawalPending, models.WithdrawalProcessing})},
		{&stats.RunningBots, db.Model(&models.TradingConfig{}).Where("is_active = ? AND bot_status = ?", true, models.BotStatusRunning)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("count stats: %w", err)
		}
	}

	var err error
	if stats.RevenueToday, err = revenueSince(db, dayStart); err != nil {
		return nil, err
	}
	if stats.RevenueThisMonth, err = revenueSince(db, monthStart); err != nil {
		return nil, err
	}
	if stats.RevenueTotal, err = revenueSince(db, time.Time{}); err != nil {
		return nil, err
	}

	var earnings []models.ReferralEarning
	if err := db.Select("amount").Where("status = ?", models.EarningPaid).Find(&earnings).Error; err != nil {
		return nil, fmt.Errorf("sum commissions: %w", err)
	}
	stats.CommissionsPaid = decimal.Zero
	for _, e := range earnings {
		stats.CommissionsPaid = stats.CommissionsPaid.Add(e.Amount)
	}
	return stats, nil
}

type ReferrerSummary struct {
	UserID          uint            `json:"userId"`
	Email           string          `json:"email"`
	ReferralCode    string          `json:"referralCode"`
	DirectReferrals int64           `json:"directReferrals"`
	CommissionTotal decimal.Decimal `json:"commissionTotal"`
}

type ReferralOverview struct {
	Level1Total     decimal.Decimal         `json:"level1Total"`
	Level2Total     decimal.Decimal         `json:"level2Total"`
	WithdrawnTotal  decimal.Decimal         `json:"withdrawnTotal"`
	ReferredUsers   int64                   `json:"referredUsers"`
	TopReferrers    []ReferrerSummary       `json:"topReferrers"`
	CurrentSettings models.ReferralSettings `json:"settings"`
}

// ReferralStats summarises the referral programme for admins.
func ReferralStats(db *gorm.DB, top int) (*ReferralOverview, error) {
	overview := &ReferralOverview{
		Level1Total:    decimal.Zero,
		Level2Total:    decimal.Zero,
		WithdrawnTotal: decimal.Zero,
		TopReferrers:   []ReferrerSummary{},
	}

	var earnings []models.ReferralEarning
	if err := db.Select("amount", "level").Where("status = ?", models.EarningPaid).Find(&earnings).Error; err != nil {
		return nil, fmt.Errorf("load earnings: %w", err)
	}
	for _, e := range earnings {
		if e.Level == 1 {
			overview.Level1Total = overview.Level1Total.Add(e.Amount)
		} else {
			overview.Level2Total = overview.Level2Total.Add(e.Amount)
		}
	}

	var withdrawals []models.ReferralWithdrawal
	if err := db.Select("amount").Where("status = ?", models.WithdrawalCompleted).Find(&withdrawals).Error; err != nil {
		return nil, fmt.Errorf("load withdrawals: %w", err)
	}
	for _, w := range withdrawals {
		overview.WithdrawnTotal = overview.WithdrawnTotal.Add(w.Amount)
	}

	if err := db.Model(&models.User{}).Where("referrer_id IS NOT NULL").Count(&overview.ReferredUsers).Error; err != nil {
		return nil, fmt.Errorf("count referred users: %w", err)
	}

	var referrers []models.User
	if err := db.Select("id", "email", "referral_code", "commission_total").
		Where("commission_total > 0").
		Order("commission_total DESC").
		Limit(top).
		Find(&referrers).Error; err != nil {
		return nil, fmt.Errorf("load top referrers: %w", err)
	}
	for _, r := range referrers {
		summary := ReferrerSummary{
			UserID:          r.ID,
			Email:           r.Email,
			ReferralCode:    r.ReferralCode,
			CommissionTotal: r.CommissionTotal,
		}
		if err := db.Model(&models.User{}).Where("referrer_id = ?", r.ID).Count(&summary.DirectReferrals).Error; err != nil {
			return nil, fmt.Errorf("count referrals: %w", err)
		}
		overview.TopReferrers = append(overview.TopReferrers, summary)
	}

	settings, err := CurrentSettings(db)
	if err != nil {
		return nil, err
	}
	overview.CurrentSettings = settings
	return overview, nil
}
