package botValidator

import (
	"botportal/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ActiveUsersQuery struct {
	Exchange string `query:"exchange" validate:"omitempty,alphanum,max=30"`
}

type TradeRequest struct {
	UserID        uint            `json:"userId" validate:"required,gt=0"`
	Exchange      string          `json:"exchange" validate:"required,alphanum,max=30"`
	Symbol        string          `json:"symbol" validate:"max=30"`
	ProfitPercent decimal.Decimal `json:"profitPercent"`
}

type ErrorRequest struct {
	UserID    uint   `json:"userId" validate:"required,gt=0"`
	Exchange  string `json:"exchange" validate:"required,alphanum,max=30"`
	ErrorType string `json:"errorType" validate:"required,max=50"`
	Message   string `json:"message" validate:"max=1000"`
}

type DeactivateRequest struct {
	Exchange string `json:"exchange" validate:"omitempty,alphanum,max=30"`
	Reason   string `json:"reason" validate:"max=500"`
}

type StatusRequest struct {
	Exchange string `json:"exchange" validate:"omitempty,alphanum,max=30"`
	Status   string `json:"status" validate:"required,oneof=running stopped paused error"`
}

func ActiveUsers() fiber.Handler {
	return validators.Query[ActiveUsersQuery]("validatedActiveUsers")
}

func Trade() fiber.Handler {
	return validators.Body[TradeRequest]("validatedTrade")
}

func Error() fiber.Handler {
	return validators.Body[ErrorRequest]("validatedBotError")
}

func Deactivate() fiber.Handler {
	return validators.Body[DeactivateRequest]("validatedDeactivate")
}

func Status() fiber.Handler {
	return validators.Body[StatusRequest]("validatedBotStatus")
}
