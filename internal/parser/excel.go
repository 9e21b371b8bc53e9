package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

const maxBoundaryRows = 50

// ExcelParser handles bank statement spreadsheets with separate withdrawal
// and deposit columns.
type ExcelParser struct {
	log    zerolog.Logger
	engine Categorizer
}

func NewExcelParser(log zerolog.Logger, engine Categorizer) *ExcelParser {
	return &ExcelParser{log: log, engine: engine}
}

func (p *ExcelParser) Supports(filename string) bool {
	return hasExtension(filename, ".xls")
}

// Parse walks the first sheet: detect the bank from the top rows, locate the
// first data row, map columns from the row above it, then convert every row
// below. A row that fails to parse is logged and skipped, never fatal.
func (p *ExcelParser) Parse(data []byte, _ string) (*models.ParseResult, error) {
	rows, err := loadSheet(data)
	if err != nil {
		return nil, err
	}

	result := &models.ParseResult{
		Bank: DetectBank(headerLines(rows, 5)),
	}
	p.log.Info().Str("bank", string(result.Bank)).Msg("detected bank")

	first := FirstTransactionRow(rows, maxBoundaryRows)
	if first == -1 {
		p.log.Warn().Msg("no transaction rows found in spreadsheet")
		return result, nil
	}

	header := rows[first]
	if first > 0 && rows[first-1] != nil {
		header = rows[first-1]
	}
	cm := DetectColumns(header)

	for i := first; i < len(rows); i++ {
		t := p.parseRow(rows[i], cm)
		if t == nil {
			continue
		}
		if t.IsCreditCardPayment {
			t.Category = models.CategoryTransfers
			t.IncludeInTotals = false
		} else {
			p.engine.Categorize(t)
		}
		result.Transactions = append(result.Transactions, *t)
	}

	p.log.Info().Int("count", len(result.Transactions)).Msg("parsed spreadsheet statement")
	return result, nil
}

// parseRow returns nil for rows that are not transactions: missing date,
// empty description, or neither a positive withdrawal nor deposit.
func (p *ExcelParser) parseRow(cells []string, cm ColumnMap) *models.Transaction {
	date, err := ParseDate(cellAt(cells, cm.Date))
	if err != nil {
		return nil
	}

	description := strings.TrimSpace(cellAt(cells, cm.Description))
	if description == "" {
		return nil
	}

	t := &models.Transaction{
		Date:            date,
		Description:     description,
		RefNo:           strings.TrimSpace(cellAt(cells, cm.RefNo)),
		Category:        models.CategoryMiscellaneous,
		IncludeInTotals: true,
	}

	withdrawal, wErr := ParseAmount(cellAt(cells, cm.Withdrawal))
	deposit, dErr := ParseAmount(cellAt(cells, cm.Deposit))
	switch {
	case wErr == nil && withdrawal.IsPositive():
		t.Type = models.TypeDebit
		t.Amount = withdrawal.Abs()
	case dErr == nil && deposit.IsPositive():
		t.Type = models.TypeCredit
		t.Amount = deposit.Abs()
	default:
		return nil
	}

	if balance, err := ParseAmount(cellAt(cells, cm.Balance)); err == nil {
		t.Balance.Decimal = balance
		t.Balance.Valid = true
	}

	t.IsCreditCardPayment = isCardPaymentDescription(description)
	return t
}

// isCardPaymentDescription flags self-payments to a credit card so they can
// be excluded from spending totals.
func isCardPaymentDescription(description string) bool {
	upper := strings.ToUpper(description)
	return strings.Contains(upper, "CREDIT CARD PAYMENT") ||
		strings.Contains(upper, "CC PAYMENT") ||
		strings.Contains(upper, "VISA PAYMENT") ||
		strings.Contains(upper, "AMEX PAYMENT") ||
		strings.Contains(upper, "MASTERCARD PAYMENT") ||
		strings.Contains(upper, "CARD PAYMENT") ||
		strings.Contains(upper, "CREDITCARD") ||
		(strings.Contains(upper, "CREDIT") && strings.Contains(upper, "CARD") &&
			strings.Contains(upper, "PAYMENT"))
}

// loadSheet reads the first worksheet into a string grid.
func loadSheet(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// headerLines joins the non-empty cells of the top rows for bank detection.
func headerLines(rows [][]string, n int) []string {
	var lines []string
	for i := 0; i < n && i < len(rows); i++ {
		var parts []string
		for _, cell := range rows[i] {
			if s := strings.TrimSpace(cell); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return lines
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}
