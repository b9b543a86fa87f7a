package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
}

// MonthSummary is a compact dashboard summary for a specific year+month.
// Payable and Receivable count only what is still open (not yet paid or
// received); Balance is all receivables minus all payables regardless of
// status.
type MonthSummary struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"` // 1-12
	Payable    float64          `json:"payable"`
	Receivable float64          `json:"receivable"`
	Balance    float64          `json:"balance"`
	ByCategory []CategoryAmount `json:"byCategory"`
}
