package notifier

import (
	"context"
	"errors"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultBackoff    = time.Second
	defaultMaxRetries = 4
)

// Client wraps the Telegram Bot API for a single operator chat. Outbound calls are
// spaced by a minimum interval and retried with exponential backoff on HTTP 429.
type Client struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	limiter    *rate.Limiter
	backoff    time.Duration
	maxRetries int
}

func NewClient(bot *tgbotapi.BotAPI, chatID int64, minInterval time.Duration) *Client {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Client{
		bot:        bot,
		chatID:     chatID,
		limiter:    rate.NewLimiter(limit, 1),
		backoff:    defaultBackoff,
		maxRetries: defaultMaxRetries,
	}
}

// ChatID returns the operator chat the client posts to.
func (c *Client) ChatID() int64 {
	return c.chatID
}

func (c *Client) do(ctx context.Context, method string, call func() error) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := call()
		if err == nil {
			return nil
		}

		var tgErr *tgbotapi.Error
		if !errors.As(err, &tgErr) || tgErr.Code != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return err
		}

		delay := c.backoff << attempt
		if retryAfter := time.Duration(tgErr.RetryAfter) * time.Second; retryAfter > delay {
			delay = retryAfter
		}
		logrus.WithFields(logrus.Fields{
			"method":  method,
			"attempt": attempt + 1,
			"delay":   delay,
		}).Warn("Telegram rate limit hit, backing off")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// SendText posts an HTML message, optionally with an inline keyboard, and returns
// its message id.
func (c *Client) SendText(ctx context.Context, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	var sent tgbotapi.Message
	err := c.do(ctx, "sendMessage", func() error {
		var err error
		sent, err = c.bot.Send(msg)
		return err
	})
	return sent.MessageID, err
}

// SendDocument uploads an in-memory file to the chat.
func (c *Client) SendDocument(ctx context.Context, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(c.chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption

	return c.do(ctx, "sendDocument", func() error {
		_, err := c.bot.Send(doc)
		return err
	})
}

// EditMessage replaces the text of an earlier message and drops its keyboard.
func (c *Client) EditMessage(ctx context.Context, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(c.chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML

	return c.do(ctx, "editMessageText", func() error {
		_, err := c.bot.Request(edit)
		return err
	})
}

// AnswerCallback acknowledges an inline button press with a short toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.do(ctx, "answerCallbackQuery", func() error {
		_, err := c.bot.Request(tgbotapi.NewCallback(callbackID, text))
		return err
	})
}
