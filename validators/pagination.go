package validators

import (
	"botportal/middleware"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

type Pagination struct {
	Page   int    `query:"page" validate:"gte=1"`
	Limit  int    `query:"limit" validate:"gte=1,lte=100"`
	Status string `query:"status"`
	Search string `query:"search"`
}

func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate parses page/limit (plus optional status and search filters) from the
// query string into Locals("pagination").
func Paginate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &Pagination{Page: defaultPage, Limit: defaultLimit}
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if errs := middleware.ValidateStruct(reqData); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("pagination", reqData)
		return c.Next()
	}
}

// PageResponse wraps a page of items with the pagination block used by list endpoints.
func PageResponse(key string, items interface{}, total int64, p *Pagination) fiber.Map {
	return fiber.Map{
		key: items,
		"pagination": fiber.Map{
			"total": total,
			"page":  p.Page,
			"limit": p.Limit,
		},
	}
}
