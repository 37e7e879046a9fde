package adminValidator

import (
	"botportal/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PaymentReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=COMPLETED FAILED"`
	Note   string `json:"note" validate:"max=500"`
}

type BulkSubscriptionRequest struct {
	IDs    []uint `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
	Action string `json:"action" validate:"required,oneof=activate cancel expire"`
}

type WithdrawalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PROCESSING COMPLETED REJECTED"`
	Note   string `json:"note" validate:"max=500"`
}

type SettingsRequest struct {
	Level1Percent decimal.Decimal `json:"level1Percent" validate:"gte=0,lte=100"`
	Level2Percent decimal.Decimal `json:"level2Percent" validate:"gte=0,lte=100"`
	MinWithdrawal decimal.Decimal `json:"minWithdrawal" validate:"gte=0"`
	MaxDepth      int             `json:"maxDepth" validate:"gte=0,lte=2"`
}

type PlanRequest struct {
	Name           string          `json:"name" validate:"required,min=2,max=50"`
	Description    string          `json:"description" validate:"max=1000"`
	MonthlyPrice   decimal.Decimal `json:"monthlyPrice" validate:"gte=0"`
	QuarterlyPrice decimal.Decimal `json:"quarterlyPrice" validate:"gte=0"`
	ProfitLimit    decimal.Decimal `json:"profitLimit" validate:"gte=0"`
	IsActive       *bool           `json:"isActive"`
}

func ReviewPayment() fiber.Handler {
	return validators.Body[PaymentReviewRequest]("validatedReview")
}

func BulkSubscriptions() fiber.Handler {
	return validators.Body[BulkSubscriptionRequest]("validatedBulk")
}

func WithdrawalStatus() fiber.Handler {
	return validators.Body[WithdrawalStatusRequest]("validatedWithdrawalStatus")
}

func Settings() fiber.Handler {
	return validators.Body[SettingsRequest]("validatedSettings")
}

func Plan() fiber.Handler {
	return validators.Body[PlanRequest]("validatedPlan")
}

func List() fiber.Handler {
	return validators.Paginate()
}
