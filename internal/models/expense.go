package models

import "time"

// SuggestedCategories are UI hints only. The extraction model's vocabulary is
// not stable, so category is stored as an open string and never validated
// against this set.
var SuggestedCategories = []string{
	"groceries",
	"restaurant",
	"coffee",
	"transport",
	"shopping",
	"other",
}

// ExpenseRecord is one parsed receipt. Records are append-only: once inserted
// they are never updated or deleted. RawJSON keeps the verbatim model reply so
// the original extraction output stays auditable regardless of how well the
// structured fields parsed.
type ExpenseRecord struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Date      string    `db:"date" json:"date"`
	Merchant  string    `db:"merchant" json:"merchant"`
	Category  string    `db:"category" json:"category"`
	Total     float64   `db:"total" json:"total"`
	Currency  string    `db:"currency" json:"currency"`
	Notes     string    `db:"notes" json:"notes"`
	RawJSON   string    `db:"raw_json" json:"raw_json"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
