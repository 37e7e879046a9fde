package utils

import (
	"botportal/config"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// SendEmail delivers one HTML message through SendGrid. Without an API key the message
// is only logged.
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if config.AppConfig == nil || config.AppConfig.SendgridAPIKey == "" {
		logrus.WithFields(logrus.Fields{"to": toEmail, "subject": subject}).Debug("E-mail skipped, SendGrid not configured")
		return nil
	}

	from := mail.NewEmail(config.AppConfig.EmailName, config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, subject, htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

// sendAsync fires the e-mail in the background; delivery failures are only logged.
func sendAsync(toEmail, toName, subject, htmlBody string) {
	go func() {
		if err := SendEmail(toEmail, toName, subject, htmlBody); err != nil {
			logrus.WithField("to", toEmail).Errorf("Error sending email: %v", err)
		}
	}()
}

func getEmailTemplate(title string, bodyContent string) string {
	brand := "Bot Portal"
	if config.AppConfig != nil && config.AppConfig.EmailName != "" {
		brand = config.AppConfig.EmailName
	}
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #0B1F3A; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #0B1F3A; line-height: 1.6; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #F0B90B; margin: 20px 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				Crypto trading involves risk. Past bot performance does not guarantee future results.
			</div>
		</div>
	</body>
	</html>
	`, brand, title, bodyContent)
}

// --- Triggers ---

func SendWelcomeEmail(email, name, referralCode string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your account has been created. Pick a plan and submit your payment to start the trading bot.</p>
		<div class="info-box">Your referral code: <strong>%s</strong></div>
	`, name, referralCode)
	sendAsync(email, name, "Welcome aboard", getEmailTemplate("Welcome!", body))
}

func SendPaymentApprovedEmail(email, name, planName string, endDate string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your payment has been confirmed and your <strong>%s</strong> subscription is now active.</p>
		<div class="info-box">Valid until: <strong>%s</strong></div>
		<p>Make sure your exchange API keys are configured so the bot can start trading.</p>
	`, name, planName, endDate)
	sendAsync(email, name, "Payment confirmed", getEmailTemplate("Subscription Active", body))
}

func SendPaymentRejectedEmail(email, name, txid, note string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We could not confirm the payment with transaction id <strong>%s</strong>.</p>
		<div class="info-box">%s</div>
		<p>If you believe this is a mistake, submit the payment again with the correct TXID.</p>
	`, name, txid, note)
	sendAsync(email, name, "Payment rejected", getEmailTemplate("Payment Rejected", body))
}

func SendWithdrawalStatusEmail(email, name, amount, status, note string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your referral withdrawal of <strong>%s USDT</strong> is now <strong>%s</strong>.</p>
		<div class="info-box">%s</div>
	`, name, amount, status, note)
	sendAsync(email, name, "Withdrawal "+status, getEmailTemplate("Withdrawal Update", body))
}

func SendSubscriptionExpiryReminder(email, name, planName string, endDate string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your <strong>%s</strong> subscription expires on <strong>%s</strong>.</p>
		<p>Renew before that date to keep the trading bot running without interruption.</p>
	`, name, planName, endDate)
	sendAsync(email, name, "Your subscription is expiring soon", getEmailTemplate("Subscription Expiring", body))
}

func SendSubscriptionExpiredEmail(email, name, planName string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your <strong>%s</strong> subscription has expired and the trading bot has been stopped.</p>
		<p>Choose a plan and submit a new payment to resume trading.</p>
	`, name, planName)
	sendAsync(email, name, "Your subscription has expired", getEmailTemplate("Subscription Expired", body))
}
