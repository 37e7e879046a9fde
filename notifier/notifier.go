// Package notifier delivers operator notifications to a Telegram chat.
package notifier

import (
	"botportal/config"
	"botportal/models"
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Callback data prefixes carried by the inline approve/reject buttons.
const (
	ApprovePrefix = "approve_payment_"
	RejectPrefix  = "reject_payment_"
)

// Notifier is the operator channel used by controllers and schedulers.
type Notifier interface {
	// PaymentSubmitted announces a new payment and returns the message id.
	PaymentSubmitted(ctx context.Context, payment *models.Payment, user *models.User) (int, error)
	PaymentReviewed(ctx context.Context, payment *models.Payment, user *models.User) error
	WithdrawalRequested(ctx context.Context, withdrawal *models.ReferralWithdrawal, user *models.User) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	SendReport(ctx context.Context, name string, data []byte, caption string) error
}

// Default is the process-wide notifier. It stays a no-op until Init configures Telegram.
var Default Notifier = Noop{}

// Init connects to Telegram when a bot token and chat id are configured.
func Init(cfg *config.Config) error {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		logrus.Warn("Telegram notifications disabled: TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set")
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	logrus.WithField("bot", bot.Self.UserName).Info("Telegram notifier connected")

	Default = NewTelegram(NewClient(bot, cfg.TelegramChatID, cfg.TelegramMinInterval))
	return nil
}

// Noop discards every notification.
type Noop struct{}

func (Noop) PaymentSubmitted(context.Context, *models.Payment, *models.User) (int, error) {
	return 0, nil
}
func (Noop) PaymentReviewed(context.Context, *models.Payment, *models.User) error { return nil }
func (Noop) WithdrawalRequested(context.Context, *models.ReferralWithdrawal, *models.User) error {
	return nil
}
func (Noop) AnswerCallback(context.Context, string, string) error     { return nil }
func (Noop) SendReport(context.Context, string, []byte, string) error { return nil }

// Telegram formats portal events as HTML messages for the operator chat.
type Telegram struct {
	client *Client
}

func NewTelegram(client *Client) *Telegram {
	return &Telegram{client: client}
}

func (t *Telegram) PaymentSubmitted(ctx context.Context, payment *models.Payment, user *models.User) (int, error) {
	keyboard := ReviewKeyboard(payment.ID)
	return t.client.SendText(ctx, FormatPaymentSubmitted(payment, user), &keyboard)
}

// PaymentReviewed edits the original alert when its message id is known and posts a
// new message otherwise.
func (t *Telegram) PaymentReviewed(ctx context.Context, payment *models.Payment, user *models.User) error {
	text := FormatPaymentReviewed(payment, user)
	if payment.NotificationMsgID != 0 {
		return t.client.EditMessage(ctx, payment.NotificationMsgID, text)
	}
	_, err := t.client.SendText(ctx, text, nil)
	return err
}

func (t *Telegram) WithdrawalRequested(ctx context.Context, withdrawal *models.ReferralWithdrawal, user *models.User) error {
	_, err := t.client.SendText(ctx, FormatWithdrawalRequested(withdrawal, user), nil)
	return err
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return t.client.AnswerCallback(ctx, callbackID, text)
}

func (t *Telegram) SendReport(ctx context.Context, name string, data []byte, caption string) error {
	return t.client.SendDocument(ctx, name, data, caption)
}

// ReviewKeyboard builds the approve/reject buttons for a payment.
func ReviewKeyboard(paymentID uint) tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatUint(uint64(paymentID), 10)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", ApprovePrefix+id),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", RejectPrefix+id),
		),
	)
}

// ParseCallback decodes approve/reject button data into the target payment status
// and payment id.
func ParseCallback(data string) (status string, paymentID uint, ok bool) {
	var raw string
	switch {
	case strings.HasPrefix(data, ApprovePrefix):
		status, raw = models.PaymentCompleted, strings.TrimPrefix(data, ApprovePrefix)
	case strings.HasPrefix(data, RejectPrefix):
		status, raw = models.PaymentFailed, strings.TrimPrefix(data, RejectPrefix)
	default:
		return "", 0, false
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return "", 0, false
	}
	return status, uint(id), true
}

func FormatPaymentSubmitted(payment *models.Payment, user *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💳 <b>New payment #%d</b>\n", payment.ID)
	fmt.Fprintf(&b, "User: %s (%s)\n", html.EscapeString(user.Name), html.EscapeString(user.Email))
	fmt.Fprintf(&b, "Amount: <b>%s</b> via %s\n", payment.Amount.StringFixed(2), html.EscapeString(payment.Method))
	if payment.WalletAddress != "" {
		fmt.Fprintf(&b, "Wallet: <code>%s</code>\n", html.EscapeString(payment.WalletAddress))
	}
	fmt.Fprintf(&b, "TXID: <code>%s</code>", html.EscapeString(payment.TransactionID))
	if payment.Subscription != nil {
		fmt.Fprintf(&b, "\nPlan: %s (%s)", html.EscapeString(payment.Subscription.PlanName), payment.Subscription.PlanType)
	}
	return b.String()
}

func FormatPaymentReviewed(payment *models.Payment, user *models.User) string {
	icon := "✅"
	if payment.Status == models.PaymentFailed {
		icon = "❌"
	}
	text := fmt.Sprintf("%s <b>Payment #%d %s</b>\nUser: %s\nAmount: %s via %s\nTXID: <code>%s</code>\nReviewed by: %s",
		icon, payment.ID, payment.Status,
		html.EscapeString(user.Email),
		payment.Amount.StringFixed(2), html.EscapeString(payment.Method),
		html.EscapeString(payment.TransactionID),
		html.EscapeString(payment.ReviewedBy))
	if payment.ReviewNote != "" {
		text += "\nNote: " + html.EscapeString(payment.ReviewNote)
	}
	return text
}

func FormatWithdrawalRequested(withdrawal *models.ReferralWithdrawal, user *models.User) string {
	return fmt.Sprintf("💸 <b>Withdrawal request #%d</b>\nUser: %s\nAmount: <b>%s USDT</b>\nWallet: <code>%s</code>",
		withdrawal.ID,
		html.EscapeString(user.Email),
		withdrawal.Amount.StringFixed(2),
		html.EscapeString(withdrawal.WalletAddress))
}
