package routers

import (
	"botportal/config"
	"botportal/database/dbtest"
	"botportal/middleware"
	"botportal/models"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	botToken       = "bot-token"
	webhookSecret  = "hook-secret"
	operatorChatID = int64(-1001)
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey:                "test-secret",
		SaltRound:             bcrypt.MinCost,
		BotAPIToken:           botToken,
		CredentialsKey:        "test-credentials",
		TelegramWebhookSecret: webhookSecret,
		TelegramChatID:        operatorChatID,
	}
	db := dbtest.New(t)
	return New(), db
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body interface{}, headers ...string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest), string(env.Data))
}

func signupAndLogin(t *testing.T, app *fiber.App, name, email, referralCode string) (models.User, string) {
	t.Helper()

	status, env := call(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{
		"name": name, "email": email, "password": "s3cret-pass", "referralCode": referralCode,
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	status, env = call(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"email": email, "password": "s3cret-pass"})
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var login struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decode(t, env, &login)
	return login.User, login.Token
}

func adminToken(t *testing.T, db *gorm.DB) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, Password: string(hash), ReferralCode: "ADMIN0001"}
	require.NoError(t, db.Create(&admin).Error)

	token, err := middleware.GenerateJWT(admin.ID, admin.Name, admin.Role, admin.Email)
	require.NoError(t, err)
	return token
}

func planID(t *testing.T, app *fiber.App, name string) uint {
	t.Helper()
	status, env := call(t, app, http.MethodGet, "/plans", "", nil)
	require.Equal(t, fiber.StatusOK, status)

	var plans []models.Plan
	decode(t, env, &plans)
	for _, p := range plans {
		if p.Name == name {
			return p.ID
		}
	}
	t.Fatalf("plan %s not listed", name)
	return 0
}

// submitPayment creates a subscription for the plan and pays its monthly price.
func submitPayment(t *testing.T, app *fiber.App, token, plan, txid string) models.Payment {
	t.Helper()

	status, env := call(t, app, http.MethodPost, "/subscription", token, fiber.Map{"planId": planID(t, app, plan), "planType": "MONTHLY"})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var sub models.Subscription
	decode(t, env, &sub)

	status, env = call(t, app, http.MethodPost, "/payment/submit", token, fiber.Map{
		"subscriptionId": sub.ID,
		"amount":         sub.Price.String(),
		"method":         "USDT_TRC20",
		"walletAddress":  "TXyzWalletAddress",
		"transactionId":  txid,
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var payment models.Payment
	decode(t, env, &payment)
	return payment
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := setup(t)

	status, env := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Status)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestSignupValidation(t *testing.T) {
	app, _ := setup(t)

	status, env := call(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{"name": "A", "email": "nope", "password": "short"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	var fields map[string]string
	decode(t, env, &fields)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	status, _ = call(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{
		"name": "Bob", "email": "bob@example.com", "password": "s3cret-pass", "referralCode": "NOSUCHCODE",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUserProfile(t *testing.T) {
	app, _ := setup(t)
	alice, aliceToken := signupAndLogin(t, app, "Alice", "alice@example.com", "")

	t.Run("requires a token", func(t *testing.T) {
		status, _ := call(t, app, http.MethodGet, "/user/profile", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("profile", func(t *testing.T) {
		status, env := call(t, app, http.MethodGet, "/user/profile", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status, env.Message)

		var profile struct {
			User               models.User          `json:"user"`
			ActiveSubscription *models.Subscription `json:"activeSubscription"`
			ReferredUsers      int64                `json:"referredUsers"`
			PaymentBlocked     bool                 `json:"paymentBlocked"`
		}
		decode(t, env, &profile)
		assert.Equal(t, alice.ID, profile.User.ID)
		assert.Equal(t, alice.ReferralCode, profile.User.ReferralCode)
		assert.Nil(t, profile.ActiveSubscription)
		assert.Zero(t, profile.ReferredUsers)
		assert.False(t, profile.PaymentBlocked)
	})

	t.Run("update name", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPut, "/user/profile", aliceToken, fiber.Map{"name": "A"})
		assert.Equal(t, fiber.StatusBadRequest, status)

		status, env := call(t, app, http.MethodPut, "/user/profile", aliceToken, fiber.Map{"name": "Alice Cooper"})
		require.Equal(t, fiber.StatusOK, status, env.Message)

		_, env = call(t, app, http.MethodGet, "/user/profile", aliceToken, nil)
		var profile struct {
			User models.User `json:"user"`
		}
		decode(t, env, &profile)
		assert.Equal(t, "Alice Cooper", profile.User.Name)
	})

	t.Run("wrong old password", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPut, "/user/change/password", aliceToken, fiber.Map{
			"oldPassword": "not-my-pass", "newPassword": "n3w-secret-pass",
		})
		assert.Equal(t, fiber.StatusUnauthorized, status)

		status, _ = call(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"email": "alice@example.com", "password": "s3cret-pass"})
		assert.Equal(t, fiber.StatusOK, status)
	})

	t.Run("change password", func(t *testing.T) {
		status, env := call(t, app, http.MethodPut, "/user/change/password", aliceToken, fiber.Map{
			"oldPassword": "s3cret-pass", "newPassword": "n3w-secret-pass",
		})
		require.Equal(t, fiber.StatusOK, status, env.Message)

		status, _ = call(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"email": "alice@example.com", "password": "n3w-secret-pass"})
		assert.Equal(t, fiber.StatusOK, status)

		status, _ = call(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"email": "alice@example.com", "password": "s3cret-pass"})
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})
}

func TestSubscriptionPaymentReferralFlow(t *testing.T) {
	app, db := setup(t)
	admin := adminToken(t, db)

	alice, aliceToken := signupAndLogin(t, app, "Alice", "alice@example.com", "")
	bob, bobToken := signupAndLogin(t, app, "Bob", "bob@example.com", alice.ReferralCode)
	require.NotNil(t, bob.ReferrerID)
	assert.Equal(t, alice.ID, *bob.ReferrerID)

	payment := submitPayment(t, app, bobToken, "Professional", "0xprofessional01")

	t.Run("duplicate transaction id", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/payment/submit", bobToken, fiber.Map{
			"subscriptionId": *payment.SubscriptionID,
			"amount":         "80",
			"method":         "USDT_TRC20",
			"transactionId":  "0xprofessional01",
		})
		assert.Equal(t, fiber.StatusConflict, status)
	})

	t.Run("customers cannot review payments", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPatch, fmt.Sprintf("/admin/payments/%d", payment.ID), bobToken, fiber.Map{"status": "COMPLETED"})
		assert.Equal(t, fiber.StatusForbidden, status)
	})

	t.Run("admin approves once", func(t *testing.T) {
		path := fmt.Sprintf("/admin/payments/%d", payment.ID)
		status, env := call(t, app, http.MethodPatch, path, admin, fiber.Map{"status": "COMPLETED"})
		require.Equal(t, fiber.StatusOK, status, env.Message)

		status, env = call(t, app, http.MethodPatch, path, admin, fiber.Map{"status": "COMPLETED"})
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "Payment already processed.", env.Message)

		status, _ = call(t, app, http.MethodPatch, path, admin, fiber.Map{"status": "FAILED"})
		assert.Equal(t, fiber.StatusConflict, status)
	})

	t.Run("subscription is active", func(t *testing.T) {
		status, env := call(t, app, http.MethodGet, "/subscription/active", bobToken, nil)
		require.Equal(t, fiber.StatusOK, status, env.Message)
		var active struct {
			Subscription  models.Subscription `json:"subscription"`
			DaysRemaining int                 `json:"daysRemaining"`
		}
		decode(t, env, &active)
		assert.Equal(t, models.SubscriptionActive, active.Subscription.Status)
		assert.Greater(t, active.DaysRemaining, 26)
	})

	t.Run("referrer earned level-1 commission", func(t *testing.T) {
		status, env := call(t, app, http.MethodGet, "/referral/stats", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, status, env.Message)
		var stats struct {
			CommissionTotal decimal.Decimal `json:"commissionTotal"`
			DirectReferrals int64           `json:"directReferrals"`
			ActiveReferrals int64           `json:"activeReferrals"`
		}
		decode(t, env, &stats)
		assert.True(t, stats.CommissionTotal.Equal(decimal.NewFromInt(8)), stats.CommissionTotal.String())
		assert.Equal(t, int64(1), stats.DirectReferrals)
		assert.Equal(t, int64(1), stats.ActiveReferrals)
	})

	t.Run("withdrawal above balance is refused", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/referral/withdraw", aliceToken, fiber.Map{"amount": "20", "walletAddress": "TAliceWallet0001"})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("withdrawal below minimum is refused", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/referral/withdraw", aliceToken, fiber.Map{"amount": "5", "walletAddress": "TAliceWallet0001"})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("admin stats", func(t *testing.T) {
		status, env := call(t, app, http.MethodGet, "/admin/stats", admin, nil)
		require.Equal(t, fiber.StatusOK, status, env.Message)
		var stats struct {
			ActiveSubscriptions int64           `json:"activeSubscriptions"`
			RevenueTotal        decimal.Decimal `json:"revenueTotal"`
		}
		decode(t, env, &stats)
		assert.Equal(t, int64(1), stats.ActiveSubscriptions)
		assert.True(t, stats.RevenueTotal.Equal(decimal.NewFromInt(80)))
	})
}

func TestTradingAndBotFlow(t *testing.T) {
	app, db := setup(t)
	admin := adminToken(t, db)

	bob, bobToken := signupAndLogin(t, app, "Bob", "bob@example.com", "")
	payment := submitPayment(t, app, bobToken, "Professional", "0xprofessional02")
	status, _ := call(t, app, http.MethodPatch, fmt.Sprintf("/admin/payments/%d", payment.ID), admin, fiber.Map{"status": "COMPLETED"})
	require.Equal(t, fiber.StatusOK, status)

	status, env := call(t, app, http.MethodPost, "/trading/config", bobToken, fiber.Map{
		"exchange": "Binance", "apiKey": "bob-api-key-123456", "apiSecret": "bob-api-secret-abcdef",
	})
	require.Equal(t, fiber.StatusOK, status, env.Message)

	t.Run("owner sees a masked key", func(t *testing.T) {
		status, env := call(t, app, http.MethodGet, "/trading/configs", bobToken, nil)
		require.Equal(t, fiber.StatusOK, status)
		var configs []map[string]interface{}
		decode(t, env, &configs)
		require.Len(t, configs, 1)
		assert.Equal(t, "binance", configs[0]["exchange"])
		assert.NotEqual(t, "bob-api-key-123456", configs[0]["apiKey"])
		assert.NotContains(t, configs[0], "apiSecret")
	})

	t.Run("bot endpoints need the bot token", func(t *testing.T) {
		status, _ := call(t, app, http.MethodGet, "/bot/users/active", bobToken, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	activeUsers := func(t *testing.T) []map[string]interface{} {
		t.Helper()
		status, env := call(t, app, http.MethodGet, "/bot/users/active?exchange=binance", botToken, nil)
		require.Equal(t, fiber.StatusOK, status, env.Message)
		var body struct {
			Users []map[string]interface{} `json:"users"`
		}
		decode(t, env, &body)
		return body.Users
	}

	t.Run("bot receives decrypted credentials", func(t *testing.T) {
		users := activeUsers(t)
		require.Len(t, users, 1)
		assert.Equal(t, float64(bob.ID), users[0]["userId"])
		assert.Equal(t, "bob-api-key-123456", users[0]["apiKey"])
		assert.Equal(t, "bob-api-secret-abcdef", users[0]["apiSecret"])
	})

	t.Run("bot status update", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPatch, fmt.Sprintf("/bot/users/%d/status", bob.ID), botToken, fiber.Map{"status": "running"})
		assert.Equal(t, fiber.StatusOK, status)

		status, _ = call(t, app, http.MethodPatch, fmt.Sprintf("/bot/users/%d/status", bob.ID), botToken, fiber.Map{"status": "flying"})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("profit limit stops trading", func(t *testing.T) {
		status, env := call(t, app, http.MethodPost, "/bot/trades", botToken, fiber.Map{
			"userId": bob.ID, "exchange": "binance", "symbol": "BTCUSDT", "profitPercent": "12.5",
		})
		require.Equal(t, fiber.StatusOK, status, env.Message)
		require.Len(t, activeUsers(t), 1)

		status, env = call(t, app, http.MethodPost, "/bot/trades", botToken, fiber.Map{
			"userId": bob.ID, "exchange": "binance", "symbol": "ETHUSDT", "profitPercent": "13",
		})
		require.Equal(t, fiber.StatusOK, status, env.Message)
		var result struct {
			LimitReached bool `json:"limitReached"`
			IsActive     bool `json:"isActive"`
		}
		decode(t, env, &result)
		assert.True(t, result.LimitReached)
		assert.False(t, result.IsActive)
		assert.Empty(t, activeUsers(t))

		var sub models.Subscription
		require.NoError(t, db.Where("user_id = ?", bob.ID).First(&sub).Error)
		assert.Equal(t, models.SubscriptionExpired, sub.Status)
	})

	t.Run("unknown config", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/bot/errors", botToken, fiber.Map{
			"userId": bob.ID, "exchange": "kraken", "errorType": "TIMEOUT",
		})
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("deactivate", func(t *testing.T) {
		status, env := call(t, app, http.MethodPost, fmt.Sprintf("/bot/users/%d/deactivate", bob.ID), botToken, fiber.Map{"reason": "manual stop"})
		require.Equal(t, fiber.StatusOK, status, env.Message)

		var audits int64
		require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ? AND actor = ?", "bot.deactivate", "bot").Count(&audits).Error)
		assert.Equal(t, int64(1), audits)
	})

	t.Run("delete config", func(t *testing.T) {
		status, _ := call(t, app, http.MethodDelete, "/trading/config/binance", bobToken, nil)
		assert.Equal(t, fiber.StatusOK, status)
		status, _ = call(t, app, http.MethodDelete, "/trading/config/binance", bobToken, nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}

func telegramUpdate(chatID int64, data string) map[string]interface{} {
	return map[string]interface{}{
		"update_id": 1,
		"callback_query": map[string]interface{}{
			"id":   "callback-1",
			"from": map[string]interface{}{"id": 77, "is_bot": false, "first_name": "Op", "username": "operator"},
			"message": map[string]interface{}{
				"message_id": 10,
				"date":       0,
				"chat":       map[string]interface{}{"id": chatID, "type": "supergroup"},
			},
			"data": data,
		},
	}
}

func TestTelegramWebhook(t *testing.T) {
	app, db := setup(t)

	_, bobToken := signupAndLogin(t, app, "Bob", "bob@example.com", "")
	payment := submitPayment(t, app, bobToken, "Starter", "0xstarter000001")
	approve := fmt.Sprintf("approve_payment_%d", payment.ID)

	paymentStatus := func() string {
		var stored models.Payment
		require.NoError(t, db.First(&stored, payment.ID).Error)
		return stored.Status
	}

	t.Run("wrong secret", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/telegram/webhook", "", telegramUpdate(operatorChatID, approve),
			"X-Telegram-Bot-Api-Secret-Token", "wrong")
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, models.PaymentPending, paymentStatus())
	})

	t.Run("foreign chat is ignored", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/telegram/webhook", "", telegramUpdate(42, approve),
			"X-Telegram-Bot-Api-Secret-Token", webhookSecret)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, models.PaymentPending, paymentStatus())
	})

	t.Run("unknown callback data is ignored", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/telegram/webhook", "", telegramUpdate(operatorChatID, "something_else"),
			"X-Telegram-Bot-Api-Secret-Token", webhookSecret)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, models.PaymentPending, paymentStatus())
	})

	t.Run("operator approves", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/telegram/webhook", "", telegramUpdate(operatorChatID, approve),
			"X-Telegram-Bot-Api-Secret-Token", webhookSecret)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, models.PaymentCompleted, paymentStatus())

		var stored models.Payment
		require.NoError(t, db.First(&stored, payment.ID).Error)
		assert.Equal(t, "telegram:operator", stored.ReviewedBy)
	})

	t.Run("repeated callback is harmless", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/telegram/webhook", "", telegramUpdate(operatorChatID, approve),
			"X-Telegram-Bot-Api-Secret-Token", webhookSecret)
		assert.Equal(t, fiber.StatusOK, status)

		var earnings int64
		require.NoError(t, db.Model(&models.ReferralEarning{}).Count(&earnings).Error)
		assert.Zero(t, earnings)
	})
}
