package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"snapspend/internal/api"
	"snapspend/internal/api/handlers"
	"snapspend/internal/repository"
	"snapspend/internal/service"
	"snapspend/pkg/config"
	"snapspend/pkg/logger"
	"snapspend/pkg/sqlite"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting snapspend service")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	expenseRepo := repository.NewExpenseRepository(db, appLogger)

	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	extractService := service.NewExtractService(llmService, appLogger)
	answerService := service.NewAnswerService(expenseRepo, llmService, cfg.Chat.RecentLimit, appLogger)
	chatService := service.NewChatService(extractService, answerService, expenseRepo, cfg.Upload.Dir, appLogger)

	chatHandler := handlers.NewChatHandler(chatService, cfg.Chat.DemoUserID, appLogger)
	expenseHandler := handlers.NewExpenseHandler(expenseRepo, cfg.Chat.DemoUserID, appLogger)

	app := api.SetupRouter(chatHandler, expenseHandler, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
