package dto

type ExpenseResponse struct {
	ID        int64   `json:"id"`
	Date      string  `json:"date"`
	Merchant  string  `json:"merchant"`
	Category  string  `json:"category"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
	Notes     string  `json:"notes"`
	CreatedAt string  `json:"created_at"`
}
