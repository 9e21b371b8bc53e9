package models

import "github.com/shopspring/decimal"

// Totals are overall income/expense sums across transactions flagged for
// inclusion; Balance is income minus expense.
type Totals struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

// Summary is Totals plus the number of transactions considered, the first and
// last known running balances in the range, and the per-category spend
// breakdown.
type Summary struct {
	Totals
	TransactionCount int                 `json:"transactionCount"`
	OpeningBalance   decimal.NullDecimal `json:"openingBalance"`
	ClosingBalance   decimal.NullDecimal `json:"closingBalance"`
	Categories       []CategoryExpense   `json:"categories"`
}

// MonthlyTrend is one month's income and expense within a year.
type MonthlyTrend struct {
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// DailyTrend is one day's income and expense within a month. Every day of
// the month is emitted, zero-valued when no transactions landed on it.
type DailyTrend struct {
	Day     int             `json:"day"`
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryExpense is the spend total for one category.
type CategoryExpense struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}
