package scheduler

import (
	"botportal/models"
	"botportal/services"
	"botportal/utils"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const reminderLead = 48 * time.Hour

// ExpireSubscriptions expires every ACTIVE subscription past its end date, stops the
// owners' trading and e-mails them.
func ExpireSubscriptions(db *gorm.DB, now time.Time) {
	var due []models.Subscription
	if err := db.Preload("User").
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", models.SubscriptionActive, now).
		Find(&due).Error; err != nil {
		logrus.Errorf("[SUBSCRIPTION-SCHEDULER] Error fetching due subscriptions: %v", err)
		return
	}

	expired, err := services.ExpireDueSubscriptions(db, now)
	if err != nil {
		logrus.Errorf("[SUBSCRIPTION-SCHEDULER] Error expiring subscriptions: %v", err)
		return
	}
	if expired == 0 {
		return
	}
	logrus.Infof("[SUBSCRIPTION-SCHEDULER] Expired %d subscriptions", expired)

	for _, sub := range due {
		utils.SendSubscriptionExpiredEmail(sub.User.Email, sub.User.Name, sub.PlanName)
	}
}

// RemindExpiringSubscriptions e-mails owners whose subscription ends within the next
// day after the reminder lead. Run once a day, each subscription is reminded once.
func RemindExpiringSubscriptions(db *gorm.DB, now time.Time) int {
	from := now.Add(reminderLead)
	to := from.Add(24 * time.Hour)

	var expiring []models.Subscription
	if err := db.Preload("User").
		Where("status = ? AND end_date > ? AND end_date <= ?", models.SubscriptionActive, from, to).
		Find(&expiring).Error; err != nil {
		logrus.Errorf("[SUBSCRIPTION-SCHEDULER] Error fetching expiring subscriptions: %v", err)
		return 0
	}

	for _, sub := range expiring {
		utils.SendSubscriptionExpiryReminder(sub.User.Email, sub.User.Name, sub.PlanName, sub.EndDate.Format("02 Jan 2006"))
	}
	if len(expiring) > 0 {
		logrus.Infof("[SUBSCRIPTION-SCHEDULER] Sent %d expiry reminders", len(expiring))
	}
	return len(expiring)
}
