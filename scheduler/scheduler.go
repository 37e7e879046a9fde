package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const reportTimeout = 2 * time.Minute

// Start registers the portal's periodic jobs and starts the cron runner. The caller
// stops it on shutdown.
func Start(db *gorm.DB) (*cron.Cron, error) {
	logrus.Info("[SCHEDULER] Initializing schedulers...")

	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	// Hourly expiry sweep
	if _, err := c.AddFunc("@hourly", func() {
		ExpireSubscriptions(db, time.Now())
	}); err != nil {
		return nil, err
	}

	// Reminders and operator report every morning
	if _, err := c.AddFunc("0 9 * * *", func() {
		RemindExpiringSubscriptions(db, time.Now())

		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		rows, err := SendDailyReport(ctx, db, time.Now())
		if err != nil {
			logrus.Errorf("[SCHEDULER] Daily report failed: %v", err)
			return
		}
		logrus.Infof("[SCHEDULER] Daily report sent with %d rows", rows)
	}); err != nil {
		return nil, err
	}

	c.Start()
	logrus.Info("[SCHEDULER] Started: expiry sweep hourly, reminders and report daily at 09:00")
	return c, nil
}
