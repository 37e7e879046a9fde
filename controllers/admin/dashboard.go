package adminController

import (
	"botportal/database"
	"botportal/middleware"
	"botportal/scheduler"
	"botportal/services"
	"time"

	"github.com/gofiber/fiber/v2"
)

const topReferrers = 10

func Stats(c *fiber.Ctx) error {
	stats, err := services.Stats(database.Database.Db, time.Now())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to load statistics!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard statistics.", stats)
}

func ReferralStats(c *fiber.Ctx) error {
	overview, err := services.ReferralStats(database.Database.Db, topReferrers)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to load referral statistics!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Referral statistics.", overview)
}

// SendReport sends the pending-items report to the operator chat now instead of
// waiting for the daily job.
func SendReport(c *fiber.Ctx) error {
	rows, err := scheduler.SendDailyReport(c.UserContext(), database.Database.Db, time.Now())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to send report!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Report sent.", fiber.Map{"rows": rows})
}
