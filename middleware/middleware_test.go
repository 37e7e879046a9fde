package middleware

import (
	"botportal/config"
	"botportal/database/dbtest"
	"botportal/models"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() {
	config.AppConfig = &config.Config{JWTKey: "test-secret", BotAPIToken: "bot-token"}
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userId": c.Locals("userId"), "role": c.Locals("role")})
	})
	app.Get("/admin", JWTMiddleware, AdminOnly, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("actor").(string))
	})
	app.Get("/bot", BotAuth, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, auth string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJWTMiddleware(t *testing.T) {
	testConfig()
	app := newTestApp()

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", "").StatusCode)
	})

	t.Run("malformed token", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", "Bearer not-a-jwt").StatusCode)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		token, err := GenerateJWT(1, "bob", models.RoleUser, "bob@example.com")
		require.NoError(t, err)
		config.AppConfig.JWTKey = "rotated"
		defer testConfig()

		assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", "Bearer "+token).StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateJWT(7, "bob", models.RoleUser, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, request(t, app, "/me", "Bearer "+token).StatusCode)
	})
}

func TestAdminOnly(t *testing.T) {
	testConfig()
	db := dbtest.New(t)
	app := newTestApp()

	user := models.User{Email: "user@example.com", Password: "x", ReferralCode: "USER0001", Role: models.RoleUser}
	admin := models.User{Email: "admin@example.com", Password: "x", ReferralCode: "ADMIN001", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&admin).Error)

	userToken, err := GenerateJWT(user.ID, "", models.RoleUser, user.Email)
	require.NoError(t, err)
	adminToken, err := GenerateJWT(admin.ID, "", models.RoleAdmin, admin.Email)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, request(t, app, "/admin", "Bearer "+userToken).StatusCode)
	assert.Equal(t, fiber.StatusOK, request(t, app, "/admin", "Bearer "+adminToken).StatusCode)

	t.Run("a forged role claim is not trusted", func(t *testing.T) {
		forged, err := GenerateJWT(user.ID, "", models.RoleAdmin, user.Email)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, request(t, app, "/admin", "Bearer "+forged).StatusCode)
	})
}

func TestBotAuth(t *testing.T) {
	testConfig()
	app := newTestApp()

	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/bot", "").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/bot", "Bearer wrong").StatusCode)
	assert.Equal(t, fiber.StatusNoContent, request(t, app, "/bot", "Bearer bot-token").StatusCode)

	t.Run("an unset token rejects everything", func(t *testing.T) {
		config.AppConfig.BotAPIToken = ""
		defer testConfig()
		assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/bot", "Bearer ").StatusCode)
	})
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Email  string          `json:"email" validate:"required,email"`
		Amount decimal.Decimal `json:"amount" validate:"gt=0"`
		Method string          `json:"method" validate:"oneof=BTC ETH"`
	}

	assert.Nil(t, ValidateStruct(input{Email: "a@b.io", Amount: decimal.NewFromInt(1), Method: "BTC"}))

	errs := ValidateStruct(input{Email: "nope", Amount: decimal.Zero, Method: "DOGE"})
	assert.Equal(t, "Invalid email!", errs["email"])
	assert.Equal(t, "amount must be greater than 0!", errs["amount"])
	assert.Equal(t, "method must be one of: BTC, ETH", errs["method"])
}
