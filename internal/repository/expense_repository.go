package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"snapspend/internal/models"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

// DefaultRecentLimit bounds Recent when the caller passes no explicit limit.
const DefaultRecentLimit = 50

type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends one expense record, assigning its identifier and creation
// timestamp. A write failure is returned to the caller, never swallowed.
func (r *ExpenseRepository) Insert(ctx context.Context, rec *models.ExpenseRecord) (int64, error) {
	if rec.UserID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	rec.CreatedAt = time.Now().UTC()

	query := squirrel.Insert("expenses").
		Columns("user_id", "date", "merchant", "category", "total", "currency", "notes", "raw_json", "created_at").
		Values(rec.UserID, rec.Date, rec.Merchant, rec.Category, rec.Total, rec.Currency, rec.Notes, rec.RawJSON, rec.CreatedAt).
		PlaceholderFormat(squirrel.Question)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	rec.ID = id

	r.logger.Info("Expense stored",
		zap.Int64("id", id),
		zap.String("user_id", rec.UserID),
		zap.String("merchant", rec.Merchant),
	)

	return id, nil
}

// Recent returns up to limit records for the user, most recently inserted
// first (by insertion order, not by the receipt's own date). An empty result
// means the user has no expenses yet and is not an error.
func (r *ExpenseRepository) Recent(ctx context.Context, userID string, limit int) ([]*models.ExpenseRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := squirrel.Select("id", "user_id", "date", "merchant", "category", "total", "currency", "notes", "raw_json", "created_at").
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Question)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var records []*models.ExpenseRecord
	for rows.Next() {
		var rec models.ExpenseRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Date, &rec.Merchant, &rec.Category, &rec.Total, &rec.Currency, &rec.Notes, &rec.RawJSON, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
