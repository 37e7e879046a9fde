package tradingValidator

import (
	"botportal/validators"

	"github.com/gofiber/fiber/v2"
)

type ConfigRequest struct {
	Exchange  string `json:"exchange" validate:"required,alphanum,max=30"`
	APIKey    string `json:"apiKey" validate:"required,max=256"`
	APISecret string `json:"apiSecret" validate:"required,max=256"`
}

func SaveConfig() fiber.Handler {
	return validators.Body[ConfigRequest]("validatedTradingConfig")
}
