package userProfileRoutes

import (
	userProfileController "botportal/controllers/userControllers"
	"botportal/middleware"
	userProfileValidator "botportal/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user")

	userGroup.Get("/profile", middleware.JWTMiddleware, userProfileController.GetProfile)
	userGroup.Put("/profile", userProfileValidator.UpdateProfile(), middleware.JWTMiddleware, userProfileController.UpdateProfile)
	userGroup.Put("/change/password", userProfileValidator.ChangePassword(), middleware.JWTMiddleware, userProfileController.ChangePassword)
}
