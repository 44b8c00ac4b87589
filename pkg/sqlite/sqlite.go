package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"snapspend/pkg/config"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS expenses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	date TEXT NOT NULL DEFAULT '',
	merchant TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	total REAL NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	raw_json TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_expenses_user_id ON expenses (user_id, id DESC);
`

// Open opens the expense database and ensures the schema exists.
// Rows are append-only; there is no migration machinery beyond this.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; keep the pool at one so
	// every query sees the same schema.
	if strings.Contains(cfg.Path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("Database opened", zap.String("path", cfg.Path))

	return db, nil
}
