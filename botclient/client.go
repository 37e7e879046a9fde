// Package botclient is the typed client the trading bot process uses to talk to the
// portal's /bot API.
package botclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	defaultTimeout = 15 * time.Second
	defaultRetries = 2
)

// APIError is returned for every non-2xx answer from the portal.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal returned %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type ActiveUser struct {
	UserID          uint            `json:"userId"`
	Email           string          `json:"email"`
	Exchange        string          `json:"exchange"`
	APIKey          string          `json:"apiKey"`
	APISecret       string          `json:"apiSecret"`
	PlanName        string          `json:"planName"`
	ProfitLimit     decimal.Decimal `json:"profitLimit"`
	TotalProfit     decimal.Decimal `json:"totalProfit"`
	BotStatus       string          `json:"botStatus"`
	SubscriptionEnd time.Time       `json:"subscriptionEnd"`
}

type Trade struct {
	UserID        uint            `json:"userId"`
	Exchange      string          `json:"exchange"`
	Symbol        string          `json:"symbol"`
	ProfitPercent decimal.Decimal `json:"profitPercent"`
}

type TradeOutcome struct {
	TotalTrades   int             `json:"totalTrades"`
	WinningTrades int             `json:"winningTrades"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
	IsActive      bool            `json:"isActive"`
	LimitReached  bool            `json:"limitReached"`
}

type BotError struct {
	UserID    uint   `json:"userId"`
	Exchange  string `json:"exchange"`
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
}

type ErrorOutcome struct {
	ErrorCount  int  `json:"errorCount"`
	Deactivated bool `json:"deactivated"`
}

type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func WithRetries(n int) Option {
	return func(c *resty.Client) { c.SetRetryCount(n) }
}

// New returns a client for the portal at baseURL authenticated with the bot token.
// Requests are retried on transport errors and 5xx answers.
func New(baseURL, token string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultTimeout).
		SetRetryCount(defaultRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if resp.IsError() {
			return &APIError{StatusCode: resp.StatusCode(), Message: resp.String()}
		}
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	if resp.IsError() || !env.Status {
		return &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
	}

	if dest != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return fmt.Errorf("decode %s data: %w", path, err)
		}
	}
	return nil
}

// ActiveUsers lists the users the bot may trade for, optionally for one exchange.
func (c *Client) ActiveUsers(ctx context.Context, exchange string) ([]ActiveUser, error) {
	path := "/bot/users/active"
	if exchange != "" {
		path += "?exchange=" + exchange
	}

	var data struct {
		Users []ActiveUser `json:"users"`
	}
	if err := c.do(ctx, resty.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data.Users, nil
}

func (c *Client) ReportTrade(ctx context.Context, trade Trade) (*TradeOutcome, error) {
	var out TradeOutcome
	if err := c.do(ctx, resty.MethodPost, "/bot/trades", trade, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReportError(ctx context.Context, report BotError) (*ErrorOutcome, error) {
	var out ErrorOutcome
	if err := c.do(ctx, resty.MethodPost, "/bot/errors", report, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type configsAffected struct {
	Configs int64 `json:"configs"`
}

// Deactivate stops the user's configs; an empty exchange stops all of them.
func (c *Client) Deactivate(ctx context.Context, userID uint, exchange, reason string) (int64, error) {
	var out configsAffected
	path := "/bot/users/" + strconv.FormatUint(uint64(userID), 10) + "/deactivate"
	body := map[string]string{"exchange": exchange, "reason": reason}
	if err := c.do(ctx, resty.MethodPost, path, body, &out); err != nil {
		return 0, err
	}
	return out.Configs, nil
}

func (c *Client) UpdateStatus(ctx context.Context, userID uint, exchange, status string) (int64, error) {
	var out configsAffected
	path := "/bot/users/" + strconv.FormatUint(uint64(userID), 10) + "/status"
	body := map[string]string{"exchange": exchange, "status": status}
	if err := c.do(ctx, resty.MethodPatch, path, body, &out); err != nil {
		return 0, err
	}
	return out.Configs, nil
}
