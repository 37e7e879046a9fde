package routers

import (
	"botportal/middleware"
	"botportal/monitoring"
	adminRoutes "botportal/routers/adminRoutes"
	authRoutes "botportal/routers/authRoutes"
	botRoutes "botportal/routers/botRoutes"
	paymentRoutes "botportal/routers/paymentRoutes"
	referralRoutes "botportal/routers/referralRoutes"
	subscriptionRoutes "botportal/routers/subscriptionRoutes"
	telegramRoutes "botportal/routers/telegramRoutes"
	tradingRoutes "botportal/routers/tradingRoutes"
	userProfileRoutes "botportal/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds the HTTP application with every route group mounted.
func New() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "botportal",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return middleware.JsonResponse(c, code, false, err.Error(), nil)
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	app.Use(monitoring.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	subscriptionRoutes.SetupSubscriptionRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	tradingRoutes.SetupTradingRoutes(app)
	referralRoutes.SetupReferralRoutes(app)
	adminRoutes.SetupAdminRoutes(app)
	botRoutes.SetupBotRoutes(app)
	telegramRoutes.SetupTelegramRoutes(app)

	// Serve static files from the public folder
	app.Static("/", "./public")

	return app
}
