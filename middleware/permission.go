package middleware

import (
	"botportal/database"
	"botportal/models"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RequireRole returns a middleware that only lets users with the given role through.
// The role is re-read from the database so demotions apply before the token expires.
// It must run after JWTMiddleware and stores the acting user's e-mail in Locals("actor").
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		var user models.User
		err := database.Database.Db.Select("id", "email", "role").
			Where("id = ? AND is_deleted = ?", userID, false).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}
		if err != nil {
			logrus.WithField("userId", userID).Errorf("Role lookup failed: %v", err)
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}

		if user.Role != role {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		c.Locals("actor", user.Email)
		return c.Next()
	}
}

// AdminOnly restricts a route to ADMIN users.
var AdminOnly = RequireRole(models.RoleAdmin)
