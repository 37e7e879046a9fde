package subscriptionValidator

import (
	"botportal/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateRequest struct {
	PlanID   uint   `json:"planId" validate:"required,gt=0"`
	PlanType string `json:"planType" validate:"required,oneof=MONTHLY QUARTERLY"`
}

func Create() fiber.Handler {
	return validators.Body[CreateRequest]("validatedSubscription")
}
