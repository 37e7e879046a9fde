package scheduler

import (
	"botportal/models"
	"botportal/notifier"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

var reportHeader = []string{"type", "id", "user_id", "email", "amount", "method", "reference", "status", "created_at"}

// BuildPendingReport renders every PENDING payment and every PENDING or PROCESSING
// withdrawal as CSV. It returns the number of data rows alongside the bytes.
func BuildPendingReport(db *gorm.DB) ([]byte, int, error) {
	var payments []models.Payment
	if err := db.Preload("User").
		Where("status = ?", models.PaymentPending).
		Order("created_at").
		Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("load pending payments: %w", err)
	}

	var withdrawals []models.ReferralWithdrawal
	if err := db.Preload("User").
		Where("status IN ?", []string{models.WithdrawalPending, models.WithdrawalProcessing}).
		Order("created_at").
		Find(&withdrawals).Error; err != nil {
		return nil, 0, fmt.Errorf("load open withdrawals: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return nil, 0, err
	}

	for _, p := range payments {
		if err := w.Write([]string{
			"payment",
			strconv.FormatUint(uint64(p.ID), 10),
			strconv.FormatUint(uint64(p.UserID), 10),
			p.User.Email,
			p.Amount.StringFixed(2),
			p.Method,
			p.TransactionID,
			p.Status,
			p.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return nil, 0, err
		}
	}
	for _, wd := range withdrawals {
		if err := w.Write([]string{
			"withdrawal",
			strconv.FormatUint(uint64(wd.ID), 10),
			strconv.FormatUint(uint64(wd.UserID), 10),
			wd.User.Email,
			wd.Amount.StringFixed(2),
			"",
			wd.WalletAddress,
			wd.Status,
			wd.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return nil, 0, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(payments) + len(withdrawals), nil
}

// SendDailyReport sends the pending-items CSV to the operator chat. Nothing is sent
// when there are no open items.
func SendDailyReport(ctx context.Context, db *gorm.DB, now time.Time) (int, error) {
	data, rows, err := BuildPendingReport(db)
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, nil
	}

	name := fmt.Sprintf("pending-%s.csv", now.Format("2006-01-02"))
	caption := fmt.Sprintf("Daily report: %d open payments and withdrawals", rows)
	if err := notifier.Default.SendReport(ctx, name, data, caption); err != nil {
		return rows, fmt.Errorf("send report: %w", err)
	}
	return rows, nil
}
