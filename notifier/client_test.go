package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123:test"

// fakeTelegram answers getMe and scripts the responses of every other method.
type fakeTelegram struct {
	mu        sync.Mutex
	calls     map[string]int
	responses map[string][]string
	forms     map[string][]string
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{
		calls:     map[string]int{},
		responses: map[string][]string{},
		forms:     map[string][]string{},
	}
}

func (f *fakeTelegram) script(method string, bodies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method] = append(f.responses[method], bodies...)
}

func (f *fakeTelegram) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	w.Header().Set("Content-Type", "application/json")

	if method == "getMe" {
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Portal","username":"portal_bot"}}`)
		return
	}

	_ = r.ParseMultipartForm(1 << 20)

	f.mu.Lock()
	f.calls[method]++
	f.forms[method] = append(f.forms[method], r.FormValue("text"))
	body := `{"ok":true,"result":true}`
	if queue := f.responses[method]; len(queue) > 0 {
		body = queue[0]
		if len(queue) > 1 {
			f.responses[method] = queue[1:]
		}
	}
	f.mu.Unlock()

	fmt.Fprint(w, body)
}

const (
	sentMessage = `{"ok":true,"result":{"message_id":42,"date":1700000000,"chat":{"id":-100,"type":"group"},"text":"ok"}}`
	tooMany     = `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 0","parameters":{"retry_after":0}}`
	badRequest  = `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
)

func newTestClient(t *testing.T, fake *fakeTelegram, minInterval time.Duration) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	bot, err := tgbotapi.NewBotAPIWithClient(testToken, server.URL+"/bot%s/%s", server.Client())
	require.NoError(t, err)

	client := NewClient(bot, -100, minInterval)
	client.backoff = time.Millisecond
	return client
}

func TestClientSendText(t *testing.T) {
	t.Run("returns the message id", func(t *testing.T) {
		fake := newFakeTelegram()
		fake.script("sendMessage", sentMessage)
		client := newTestClient(t, fake, 0)

		id, err := client.SendText(context.Background(), "hello", nil)
		require.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("retries after 429", func(t *testing.T) {
		fake := newFakeTelegram()
		fake.script("sendMessage", tooMany, tooMany, sentMessage)
		client := newTestClient(t, fake, 0)

		id, err := client.SendText(context.Background(), "hello", nil)
		require.NoError(t, err)
		assert.Equal(t, 42, id)
		assert.Equal(t, 3, fake.count("sendMessage"))
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		fake := newFakeTelegram()
		fake.script("sendMessage", tooMany)
		client := newTestClient(t, fake, 0)
		client.maxRetries = 2

		_, err := client.SendText(context.Background(), "hello", nil)
		var tgErr *tgbotapi.Error
		require.True(t, errors.As(err, &tgErr))
		assert.Equal(t, http.StatusTooManyRequests, tgErr.Code)
		assert.Equal(t, 3, fake.count("sendMessage"))
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		fake := newFakeTelegram()
		fake.script("sendMessage", badRequest)
		client := newTestClient(t, fake, 0)

		_, err := client.SendText(context.Background(), "hello", nil)
		assert.Error(t, err)
		assert.Equal(t, 1, fake.count("sendMessage"))
	})

	t.Run("spaces consecutive calls", func(t *testing.T) {
		fake := newFakeTelegram()
		fake.script("sendMessage", sentMessage)
		client := newTestClient(t, fake, 60*time.Millisecond)

		start := time.Now()
		for i := 0; i < 3; i++ {
			_, err := client.SendText(context.Background(), "tick", nil)
			require.NoError(t, err)
		}
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("honours context cancellation while throttled", func(t *testing.T) {
		fake := newFakeTelegram()
		fake.script("sendMessage", sentMessage)
		client := newTestClient(t, fake, time.Hour)

		_, err := client.SendText(context.Background(), "first", nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = client.SendText(ctx, "second", nil)
		assert.Error(t, err)
		assert.Equal(t, 1, fake.count("sendMessage"))
	})
}

func TestClientOtherMethods(t *testing.T) {
	fake := newFakeTelegram()
	fake.script("sendDocument", `{"ok":true,"result":{"message_id":5,"date":1700000000,"chat":{"id":-100,"type":"group"}}}`)
	client := newTestClient(t, fake, 0)
	ctx := context.Background()

	require.NoError(t, client.SendDocument(ctx, "report.csv", []byte("a,b\n1,2\n"), "daily"))
	require.NoError(t, client.EditMessage(ctx, 42, "edited"))
	require.NoError(t, client.AnswerCallback(ctx, "cb-1", "done"))

	assert.Equal(t, 1, fake.count("sendDocument"))
	assert.Equal(t, 1, fake.count("editMessageText"))
	assert.Equal(t, 1, fake.count("answerCallbackQuery"))
	assert.Equal(t, []string{"edited"}, fake.forms["editMessageText"])
}
