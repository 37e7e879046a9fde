package middleware

import (
	"botportal/services"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// StatusFor maps a service error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrBelowMinimum),
		errors.Is(err, services.ErrInsufficientBalance):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrPaymentBlocked):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrDuplicateTransaction),
		errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ServiceErrorResponse writes err in the JSON envelope. Unexpected errors are logged
// and replaced by the generic fallback message.
func ServiceErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Errorf("%s: %v", fallback, err)
		return JsonResponse(c, status, false, fallback, nil)
	}
	return JsonResponse(c, status, false, err.Error(), nil)
}
