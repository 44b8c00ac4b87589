package api

import (
	"os"

	"snapspend/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	chatHandler *handlers.ChatHandler,
	expenseHandler *handlers.ExpenseHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-User-ID",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Static chat page, if present
	if dirExists("./web/static") {
		appLogger.Info("Serving static files", zap.String("path", "./web/static"))
		app.Static("/", "./web/static")
	} else {
		appLogger.Warn("Web static directory not found, static files will not be served")
	}

	v1 := app.Group("/api/v1")

	chat := v1.Group("/chat")
	chat.Post("", chatHandler.HandleTurn)
	chat.Get("/history", chatHandler.GetHistory)

	v1.Get("/expenses", expenseHandler.ListRecent)

	return app
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
