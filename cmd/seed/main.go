// Seeds a handful of demo expenses so the answering path can be tried
// without uploading receipts first.
package main

import (
	"context"
	"log"

	"snapspend/internal/models"
	"snapspend/internal/repository"
	"snapspend/pkg/config"
	"snapspend/pkg/logger"
	"snapspend/pkg/sqlite"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	expenseRepo := repository.NewExpenseRepository(db, appLogger)

	seeds := []*models.ExpenseRecord{
		{Date: "2026-08-10", Merchant: "Cafe Luna", Category: "coffee", Total: 4.50, Currency: "USD", Notes: "latte"},
		{Date: "2026-08-11", Merchant: "GreenMart", Category: "groceries", Total: 62.13, Currency: "USD", Notes: "weekly shop"},
		{Date: "2026-08-12", Merchant: "Metro", Category: "transport", Total: 2.75, Currency: "USD"},
		{Date: "2026-08-14", Merchant: "Trattoria Roma", Category: "restaurant", Total: 38.90, Currency: "USD", Notes: "dinner for two"},
		{Date: "2026-08-16", Merchant: "BookNook", Category: "shopping", Total: 19.99, Currency: "USD", Notes: "paperback"},
	}

	appLogger.Info("Seeding demo expenses", zap.String("user_id", cfg.Chat.DemoUserID))

	for _, rec := range seeds {
		rec.UserID = cfg.Chat.DemoUserID
		if _, err := expenseRepo.Insert(ctx, rec); err != nil {
			appLogger.Fatal("Failed to seed expense", zap.Error(err), zap.String("merchant", rec.Merchant))
		}
	}

	appLogger.Info("Seeding completed", zap.Int("count", len(seeds)))
}
