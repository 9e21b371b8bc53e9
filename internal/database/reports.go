package database

import (
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

// Aggregation happens in Go over decimal values rather than in SQL: amounts
// are stored as decimal strings and CAST-based summing would round them.

// TotalsFilter narrows the totals computation. Zero values mean "no filter".
type TotalsFilter struct {
	FromDate string
	ToDate   string
	Category string
	Search   string
}

// Totals sums income and expense over the transactions flagged for inclusion
// that pass the filter.
func (db *DB) Totals(f TotalsFilter) (models.Totals, error) {
	query := `SELECT amount, type FROM transactions WHERE include_in_totals = 1`
	var args []any
	if f.FromDate != "" {
		query += ` AND date >= ?`
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		query += ` AND date <= ?`
		args = append(args, f.ToDate)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Search != "" {
		query += ` AND description LIKE ?`
		args = append(args, "%"+f.Search+"%")
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return models.Totals{}, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	var totals models.Totals
	for rows.Next() {
		var amountStr, txnType string
		if err := rows.Scan(&amountStr, &txnType); err != nil {
			return models.Totals{}, fmt.Errorf("scan totals row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return models.Totals{}, fmt.Errorf("stored amount %q: %w", amountStr, err)
		}
		if txnType == models.TypeCredit {
			totals.TotalIncome = totals.TotalIncome.Add(amount)
		} else {
			totals.TotalExpense = totals.TotalExpense.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Totals{}, err
	}
	totals.Balance = totals.TotalIncome.Sub(totals.TotalExpense)
	return totals, nil
}

// Summary walks the transactions in an optional inclusive date range (empty
// strings mean unbounded) in date order: the count covers every row, the
// totals and category breakdown only rows flagged for inclusion, and the
// opening/closing balances are the first and last running balances seen.
func (db *DB) Summary(fromDate, toDate string) (models.Summary, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1 = 1`
	var args []any
	if fromDate != "" {
		query += ` AND date >= ?`
		args = append(args, fromDate)
	}
	if toDate != "" {
		query += ` AND date <= ?`
		args = append(args, toDate)
	}
	query += ` ORDER BY date, id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return models.Summary{}, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	transactions, err := collectTransactions(rows)
	if err != nil {
		return models.Summary{}, err
	}

	var summary models.Summary
	byCategory := make(map[string]decimal.Decimal)
	var order []string
	for _, t := range transactions {
		summary.TransactionCount++
		if t.Balance.Valid {
			if !summary.OpeningBalance.Valid {
				summary.OpeningBalance = t.Balance
			}
			summary.ClosingBalance = t.Balance
		}
		if !t.IncludeInTotals {
			continue
		}
		if t.Type == models.TypeCredit {
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
			continue
		}
		summary.TotalExpense = summary.TotalExpense.Add(t.Amount)
		if _, seen := byCategory[t.Category]; !seen {
			order = append(order, t.Category)
		}
		byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	summary.Categories = sortedCategoryExpenses(byCategory, order)
	return summary, nil
}

// MonthlyTrends returns income and expense per month for one year. All
// twelve months are emitted.
func (db *DB) MonthlyTrends(year int) ([]models.MonthlyTrend, error) {
	from := civil.Date{Year: year, Month: time.January, Day: 1}
	to := civil.Date{Year: year, Month: time.December, Day: 31}
	transactions, err := db.includedBetween(from, to)
	if err != nil {
		return nil, err
	}

	trends := make([]models.MonthlyTrend, 12)
	for i := range trends {
		trends[i].Month = i + 1
	}
	for _, t := range transactions {
		m := int(t.Date.Month) - 1
		if t.Type == models.TypeCredit {
			trends[m].Income = trends[m].Income.Add(t.Amount)
		} else {
			trends[m].Expense = trends[m].Expense.Add(t.Amount)
		}
	}
	return trends, nil
}

// DailyTrends returns income and expense per day for one month. Every day
// of the month is emitted, including empty ones, so charts get a full axis.
func (db *DB) DailyTrends(year, month int) ([]models.DailyTrend, error) {
	first := civil.Date{Year: year, Month: time.Month(month), Day: 1}
	last := first.AddDays(daysInMonth(year, time.Month(month)) - 1)
	transactions, err := db.includedBetween(first, last)
	if err != nil {
		return nil, err
	}

	trends := make([]models.DailyTrend, last.Day)
	for i := range trends {
		day := first.AddDays(i)
		trends[i].Day = i + 1
		trends[i].Date = day.String()
	}
	for _, t := range transactions {
		d := t.Date.Day - 1
		if t.Type == models.TypeCredit {
			trends[d].Income = trends[d].Income.Add(t.Amount)
		} else {
			trends[d].Expense = trends[d].Expense.Add(t.Amount)
		}
	}
	return trends, nil
}

// CategoryExpenses sums debit spend per category, largest first. A non-zero
// year restricts to that year, a non-zero month (with a year) to that month.
func (db *DB) CategoryExpenses(year, month int) ([]models.CategoryExpense, error) {
	query := `SELECT category, amount FROM transactions
		WHERE include_in_totals = 1 AND type = 'DEBIT'`
	var args []any
	if year > 0 {
		from := civil.Date{Year: year, Month: time.January, Day: 1}
		to := civil.Date{Year: year, Month: time.December, Day: 31}
		if month >= 1 && month <= 12 {
			from = civil.Date{Year: year, Month: time.Month(month), Day: 1}
			to = from.AddDays(daysInMonth(year, time.Month(month)) - 1)
		}
		query += ` AND date >= ? AND date <= ?`
		args = append(args, from.String(), to.String())
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query category expenses: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[string]decimal.Decimal)
	var order []string
	for rows.Next() {
		var category, amountStr string
		if err := rows.Scan(&category, &amountStr); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", amountStr, err)
		}
		if _, seen := byCategory[category]; !seen {
			order = append(order, category)
		}
		byCategory[category] = byCategory[category].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sortedCategoryExpenses(byCategory, order), nil
}

func sortedCategoryExpenses(byCategory map[string]decimal.Decimal, order []string) []models.CategoryExpense {
	expenses := make([]models.CategoryExpense, 0, len(order))
	for _, category := range order {
		expenses = append(expenses, models.CategoryExpense{
			Category: category,
			Total:    byCategory[category],
		})
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Total.GreaterThan(expenses[j].Total)
	})
	return expenses
}

func (db *DB) includedBetween(from, to civil.Date) ([]models.Transaction, error) {
	rows, err := db.Query(`SELECT `+transactionColumns+` FROM transactions
		WHERE include_in_totals = 1 AND date >= ? AND date <= ?`,
		from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
