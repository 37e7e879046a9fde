package services

import (
	"botportal/models"
	"botportal/monitoring"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// PostCommissions credits the subscriber's referrer chain for an activated
// subscription. Level n receives price * percent(n) / 100. It must run inside the
// transaction that activated the subscription; the (subscription, level) unique
// index rejects a second posting.
func PostCommissions(tx *gorm.DB, sub *models.Subscription, settings models.ReferralSettings) ([]models.ReferralEarning, error) {
	percents := settings.LevelPercents()
	if len(percents) == 0 {
		return nil, nil
	}

	var subscriber models.User
	if err := tx.Select("id", "referrer_id").First(&subscriber, sub.UserID).Error; err != nil {
		return nil, fmt.Errorf("load subscriber %d: %w", sub.UserID, err)
	}

	chain, err := referrerChain(tx, subscriber, len(percents))
	if err != nil {
		return nil, err
	}

	earnings := make([]models.ReferralEarning, 0, len(chain))
	for i, beneficiaryID := range chain {
		level := i + 1
		pct := percents[i]
		amount := sub.Price.Mul(pct).Div(hundred).Round(8)

		earning := models.ReferralEarning{
			UserID:         beneficiaryID,
			ReferredUserID: subscriber.ID,
			SubscriptionID: sub.ID,
			Level:          level,
			Amount:         amount,
			Percentage:     pct,
			Status:         models.EarningPaid,
		}
		if err := tx.Create(&earning).Error; err != nil {
			return nil, fmt.Errorf("create level %d earning: %w", level, err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", beneficiaryID).
			Update("commission_total", gorm.Expr("commission_total + ?", amount)).Error; err != nil {
			return nil, fmt.Errorf("credit user %d: %w", beneficiaryID, err)
		}

		monitoring.CommissionsPosted.WithLabelValues(strconv.Itoa(level)).Inc()
		earnings = append(earnings, earning)
	}
	return earnings, nil
}

// referrerChain follows referrer links upward from the subscriber for at most depth
// hops. The walk stops at the first user already seen, so cyclic referral data can
// never credit anyone twice.
func referrerChain(tx *gorm.DB, subscriber models.User, depth int) ([]uint, error) {
	visited := map[uint]bool{subscriber.ID: true}
	chain := make([]uint, 0, depth)

	next := subscriber.ReferrerID
	for len(chain) < depth && next != nil {
		id := *next
		if visited[id] {
			break
		}

		var referrer models.User
		err := tx.Select("id", "referrer_id").Where("is_deleted = ?", false).First(&referrer, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load referrer %d: %w", id, err)
		}

		visited[id] = true
		chain = append(chain, referrer.ID)
		next = referrer.ReferrerID
	}
	return chain, nil
}
