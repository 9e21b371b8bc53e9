package database

import (
	"database/sql"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

const transactionColumns = `id, date, description, ref_no, amount, type, balance, category,
	is_credit_card_transaction, is_credit_card_payment, include_in_totals,
	transaction_hash, fingerprint_hash, created_at`

// InsertTransaction stores one transaction. A hash collision with an already
// stored row returns ErrDuplicate.
func (db *DB) InsertTransaction(t *models.Transaction) (int64, error) {
	var balance any
	if t.Balance.Valid {
		balance = t.Balance.Decimal.String()
	}
	var fingerprint any = t.FingerprintHash
	result, err := db.Exec(`
		INSERT INTO transactions (
			date, description, ref_no, amount, type, balance, category,
			is_credit_card_transaction, is_credit_card_payment, include_in_totals,
			transaction_hash, fingerprint_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Date.String(), t.Description, t.RefNo, t.Amount.String(), t.Type, balance,
		t.Category, t.IsCreditCardTransaction, t.IsCreditCardPayment, t.IncludeInTotals,
		t.TransactionHash, fingerprint)
	if err != nil {
		return 0, mapConstraintErr(err)
	}
	return result.LastInsertId()
}

// GetTransaction returns one transaction by id.
func (db *DB) GetTransaction(id int64) (*models.Transaction, error) {
	row := db.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	return &t, nil
}

// TransactionFilter narrows and orders a transaction listing. Zero values
// mean "no filter".
type TransactionFilter struct {
	Search     string
	Category   string
	Type       string
	CreditCard *bool
	FromDate   string
	ToDate     string
	SortBy     string
	SortDir    string
	Page       int
	Size       int
}

// sortColumns whitelists the client-facing sort keys. Amount sorts
// numerically despite the decimal-string storage.
var sortColumns = map[string]string{
	"date":        "date",
	"amount":      "CAST(amount AS REAL)",
	"category":    "category",
	"description": "description",
	"createdAt":   "created_at",
	"id":          "id",
}

// ListTransactions returns one page plus the total row count for the filter.
func (db *DB) ListTransactions(f TransactionFilter) ([]models.Transaction, int, error) {
	var conds []string
	var args []any

	if f.Search != "" {
		conds = append(conds, "description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.CreditCard != nil {
		conds = append(conds, "is_credit_card_transaction = ?")
		args = append(args, *f.CreditCard)
	}
	if f.FromDate != "" {
		conds = append(conds, "date >= ?")
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		conds = append(conds, "date <= ?")
		args = append(args, f.ToDate)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	sortCol, ok := sortColumns[f.SortBy]
	if !ok {
		sortCol = "date"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}

	size := f.Size
	if size <= 0 {
		size = 20
	}
	page := f.Page
	if page < 0 {
		page = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions%s ORDER BY %s %s, id DESC LIMIT ? OFFSET ?`,
		transactionColumns, where, sortCol, dir)
	args = append(args, size, page*size)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// AllTransactions returns every stored transaction, oldest first. Used by
// the recategorization sweep and the CSV export.
func (db *DB) AllTransactions() ([]models.Transaction, error) {
	rows, err := db.Query(`SELECT ` + transactionColumns + ` FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// TransactionsBetween returns transactions within the inclusive date range.
func (db *DB) TransactionsBetween(from, to civil.Date) ([]models.Transaction, error) {
	rows, err := db.Query(`SELECT `+transactionColumns+` FROM transactions
		WHERE date >= ? AND date <= ? ORDER BY date, id`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// UpdateTransactionCategory sets a user-chosen category on one transaction.
func (db *DB) UpdateTransactionCategory(id int64, category string) error {
	result, err := db.Exec(`UPDATE transactions SET category = ? WHERE id = ?`, category, id)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %d not found", id)
	}
	return nil
}

// UpdateCategorization persists a rule-engine outcome.
func (db *DB) UpdateCategorization(id int64, category string, includeInTotals bool) error {
	_, err := db.Exec(`UPDATE transactions SET category = ?, include_in_totals = ? WHERE id = ?`,
		category, includeInTotals, id)
	if err != nil {
		return fmt.Errorf("update categorization: %w", err)
	}
	return nil
}

// DistinctCategories lists every category currently in use.
func (db *DB) DistinctCategories() ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT category FROM transactions ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CountTransactions returns the total number of stored transactions.
func (db *DB) CountTransactions() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// DeleteAllTransactions wipes the transactions table and returns the number
// of rows removed.
func (db *DB) DeleteAllTransactions() (int64, error) {
	result, err := db.Exec(`DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	return result.RowsAffected()
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func scanTransaction(scan func(dest ...any) error) (models.Transaction, error) {
	var t models.Transaction
	var date, amount string
	var balance sql.NullString
	if err := scan(&t.ID, &date, &t.Description, &t.RefNo, &amount, &t.Type, &balance,
		&t.Category, &t.IsCreditCardTransaction, &t.IsCreditCardPayment, &t.IncludeInTotals,
		&t.TransactionHash, &t.FingerprintHash, &t.CreatedAt); err != nil {
		return t, err
	}

	var err error
	if t.Date, err = civil.ParseDate(date); err != nil {
		return t, fmt.Errorf("stored date %q: %w", date, err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return t, fmt.Errorf("stored amount %q: %w", amount, err)
	}
	if balance.Valid {
		d, err := decimal.NewFromString(balance.String)
		if err != nil {
			return t, fmt.Errorf("stored balance %q: %w", balance.String, err)
		}
		t.Balance = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return t, nil
}
