package middleware

import (
	"botportal/config"
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// BotAuth authenticates the trading bot with the static BOT_API_TOKEN bearer token.
func BotAuth(c *fiber.Ctx) error {
	expected := config.AppConfig.BotAPIToken
	token, ok := bearerToken(c)
	if !ok || expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid bot token", nil)
	}

	c.Locals("actor", "bot")
	return c.Next()
}
