package paymentValidator

import (
	"botportal/middleware"
	"botportal/models"
	"botportal/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SubmitRequest struct {
	SubscriptionID *uint           `json:"subscriptionId" validate:"omitempty,gt=0"`
	Amount         decimal.Decimal `json:"amount" validate:"gt=0"`
	Method         string          `json:"method" validate:"required"`
	WalletAddress  string          `json:"walletAddress" validate:"max=128"`
	TransactionID  string          `json:"transactionId" validate:"required,min=8,max=128"`
}

func isKnownMethod(method string) bool {
	for _, m := range models.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Submit validator middleware
func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Method = strings.ToUpper(strings.TrimSpace(reqData.Method))
		reqData.TransactionID = strings.TrimSpace(reqData.TransactionID)
		reqData.WalletAddress = strings.TrimSpace(reqData.WalletAddress)

		errors := middleware.ValidateStruct(reqData)
		if reqData.Method != "" && !isKnownMethod(reqData.Method) {
			if errors == nil {
				errors = make(map[string]string)
			}
			errors["method"] = "method must be one of: " + strings.Join(models.PaymentMethods, ", ")
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}

func List() fiber.Handler {
	return validators.Paginate()
}
