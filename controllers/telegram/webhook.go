package telegramController

import (
	"botportal/config"
	"botportal/database"
	paymentController "botportal/controllers/payment"
	"botportal/notifier"
	"botportal/services"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Webhook receives Telegram updates. Only callback queries pressed in the configured
// operator chat are acted on; everything else is acknowledged and dropped so Telegram
// does not redeliver it.
func Webhook(c *fiber.Ctx) error {
	secret := config.AppConfig.TelegramWebhookSecret
	if secret == "" || subtle.ConstantTimeCompare([]byte(c.Get(secretHeader)), []byte(secret)) != 1 {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		logrus.Warnf("Malformed Telegram update: %v", err)
		return c.SendStatus(fiber.StatusOK)
	}

	query := update.CallbackQuery
	if query == nil || query.Message == nil || query.Message.Chat == nil {
		return c.SendStatus(fiber.StatusOK)
	}
	if query.Message.Chat.ID != config.AppConfig.TelegramChatID {
		logrus.WithField("chatId", query.Message.Chat.ID).Warn("Callback from unknown chat ignored")
		return c.SendStatus(fiber.StatusOK)
	}

	status, paymentID, ok := notifier.ParseCallback(query.Data)
	if !ok {
		return c.SendStatus(fiber.StatusOK)
	}

	answer := handleReview(paymentID, status, operatorName(query.From))

	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()
	if err := notifier.Default.AnswerCallback(ctx, query.ID, answer); err != nil {
		logrus.WithField("paymentId", paymentID).Errorf("Answering callback failed: %v", err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// handleReview applies the operator's decision and returns the callback answer text.
func handleReview(paymentID uint, status, actor string) string {
	result, err := services.ReviewPayment(database.Database.Db, paymentID, status, actor, "Reviewed via Telegram", time.Now())
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "Payment not found"
	case errors.Is(err, services.ErrInvalidTransition):
		return "Payment was already reviewed with another decision"
	case err != nil:
		logrus.WithField("paymentId", paymentID).Errorf("Telegram review failed: %v", err)
		return "Review failed, try again"
	}

	if result.AlreadyProcessed {
		return "Payment already processed"
	}

	paymentController.AfterReview(result)
	logrus.WithFields(logrus.Fields{"paymentId": paymentID, "status": status, "actor": actor}).Info("Payment reviewed via Telegram")
	return fmt.Sprintf("Payment #%d marked %s", paymentID, status)
}

func operatorName(user *tgbotapi.User) string {
	if user == nil {
		return "telegram"
	}
	if user.UserName != "" {
		return "telegram:" + user.UserName
	}
	return fmt.Sprintf("telegram:%d", user.ID)
}
