package paymentController

import (
	"botportal/config"
	"botportal/database"
	"botportal/models"
	"botportal/notifier"
	"botportal/services"
	"botportal/utils"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// AfterReview runs the side effects of a payment decision once it has committed: the
// operator alert is updated, the customer is e-mailed and, on approval, the
// credential keystore entries are refreshed. Failures are logged only.
func AfterReview(result *services.ReviewResult) {
	if result == nil || result.AlreadyProcessed {
		return
	}

	payment := result.Payment
	user := result.User

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := notifier.Default.PaymentReviewed(ctx, &payment, &user); err != nil {
			logrus.WithField("paymentId", payment.ID).Errorf("Review notification failed: %v", err)
		}
	}()

	if payment.Status != models.PaymentCompleted {
		utils.SendPaymentRejectedEmail(user.Email, user.Name, payment.TransactionID, payment.ReviewNote)
		return
	}

	if sub := result.Subscription; sub != nil && sub.EndDate != nil {
		utils.SendPaymentApprovedEmail(user.Email, user.Name, sub.PlanName, sub.EndDate.Format("02 Jan 2006"))
	}

	go ExportCredentials(user.ID)
}

// ExportCredentials writes an encrypted keystore entry for each configured exchange of
// the user. It does nothing unless CREDENTIAL_EXPORT_DIR is set.
func ExportCredentials(userID uint) {
	dir := config.AppConfig.CredentialExportDir
	if dir == "" {
		return
	}

	db := database.Database.Db
	var user models.User
	if err := db.Select("id", "email").First(&user, userID).Error; err != nil {
		logrus.WithField("userId", userID).Errorf("Credential export skipped: %v", err)
		return
	}

	var configs []models.TradingConfig
	if err := db.Where("user_id = ? AND api_key <> '' AND api_secret <> ''", userID).Find(&configs).Error; err != nil {
		logrus.WithField("userId", userID).Errorf("Credential export skipped: %v", err)
		return
	}

	for _, cfg := range configs {
		path, err := utils.WriteCredentialExport(dir, utils.CredentialExport{
			UserID:     user.ID,
			Email:      user.Email,
			Exchange:   cfg.Exchange,
			APIKey:     cfg.APIKey,
			APISecret:  cfg.APISecret,
			ExportedAt: time.Now().UTC(),
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{"userId": userID, "exchange": cfg.Exchange}).Errorf("Credential export failed: %v", err)
			continue
		}
		logrus.WithFields(logrus.Fields{"userId": userID, "path": path}).Info("Credential keystore entry written")
	}
}
