package referralValidator

import (
	"botportal/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WithdrawRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	WalletAddress string          `json:"walletAddress" validate:"required,min=10,max=128"`
}

func Withdraw() fiber.Handler {
	return validators.Body[WithdrawRequest]("validatedWithdrawal")
}

func List() fiber.Handler {
	return validators.Paginate()
}
