package adminController

import (
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/services"
	"botportal/validators"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// page counts the rows matched by query and loads one page of them into dest with the
// given associations preloaded.
func page(query *gorm.DB, p *validators.Pagination, dest interface{}, preloads ...string) (int64, error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}

	find := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit)
	for _, assoc := range preloads {
		find = find.Preload(assoc)
	}
	if err := find.Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func idParam(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func actorOf(c *fiber.Ctx) string {
	actor, _ := c.Locals("actor").(string)
	if actor == "" {
		return "admin"
	}
	return actor
}

func UserList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("pagination").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.User{}).Where("is_deleted = ?", false)
	if search := strings.TrimSpace(reqData.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR referral_code = ?", like, like, search)
	}
	if reqData.Status == "blocked" {
		query = query.Where("is_blocked = ? OR payment_blocked_until IS NOT NULL", true)
	}

	var users []models.User
	total, err := page(query, reqData, &users)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User List.", validators.PageResponse("users", users, total, reqData))
}

// UnblockUser clears the payment and login blocks of the user in :id.
func UnblockUser(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
	}

	user, err := services.UnblockUser(database.Database.Db, id, actorOf(c))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err, "Failed to unblock user!")
	}

	logrus.WithFields(logrus.Fields{"userId": id, "actor": actorOf(c)}).Info("User unblocked")
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User unblocked.", user)
}
