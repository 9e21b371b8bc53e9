package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/expense-tracker/internal/dedup"
	"github.com/insightdelivered/expense-tracker/internal/models"
)

const maxCardHeaderScan = 40

// CardParser handles credit-card statement spreadsheets: a single signed
// amount column plus a debit/credit flag column. Card exports carry no
// reliable reference number, so the fingerprint hash is the sole dedup key
// and is computed here rather than left to the caller.
type CardParser struct {
	log    zerolog.Logger
	engine Categorizer
}

func NewCardParser(log zerolog.Logger, engine Categorizer) *CardParser {
	return &CardParser{log: log, engine: engine}
}

func (p *CardParser) Supports(filename string) bool {
	return hasExtension(filename, ".xls")
}

func (p *CardParser) Parse(data []byte, _ string) (*models.ParseResult, error) {
	rows, err := loadSheet(data)
	if err != nil {
		return nil, err
	}

	result := &models.ParseResult{
		Bank: DetectBank(headerLines(rows, 5)),
	}

	headerIdx := findCardHeaderRow(rows)
	if headerIdx == -1 {
		return nil, fmt.Errorf("could not find header row in card statement")
	}
	cm := DetectCardColumns(rows[headerIdx])

	for i := headerIdx + 1; i < len(rows); i++ {
		t := p.parseRow(rows[i], cm)
		if t == nil {
			continue
		}
		p.engine.Categorize(t)
		result.Transactions = append(result.Transactions, *t)
	}

	p.log.Info().Int("count", len(result.Transactions)).Msg("parsed card statement")
	return result, nil
}

// findCardHeaderRow scans for a row carrying one of the fixed card header
// cells.
func findCardHeaderRow(rows [][]string) int {
	for i, row := range rows {
		if i > maxCardHeaderScan {
			break
		}
		for _, cell := range row {
			switch strings.ToUpper(strings.TrimSpace(cell)) {
			case "DATE", "DESCRIPTION", "AMT":
				return i
			}
		}
	}
	return -1
}

func (p *CardParser) parseRow(cells []string, cm CardColumnMap) *models.Transaction {
	date, err := ParseDate(cellAt(cells, cm.Date))
	if err != nil {
		return nil
	}

	description := strings.TrimSpace(cellAt(cells, cm.Description))
	if description == "" {
		return nil
	}

	amount, err := ParseAmount(cellAt(cells, cm.Amount))
	if err != nil || amount.IsZero() {
		return nil
	}

	flag := cellAt(cells, cm.DebitCredit)
	t := &models.Transaction{
		Date:                    date,
		Description:             description,
		Amount:                  amount.Abs(),
		Type:                    resolveCardType(description, flag, amount),
		Category:                models.CategoryMiscellaneous,
		IsCreditCardTransaction: true,
		IncludeInTotals:         true,
	}

	// Same value in both hash columns keeps the uniqueness constraints
	// aligned for card rows.
	fingerprint := dedup.Fingerprint(t.Date, t.Description, t.Amount, t.Type)
	t.FingerprintHash = fingerprint
	t.TransactionHash = fingerprint
	return t
}

// resolveCardType resolves in order: the flag column, credit-ish description
// keywords, then the amount's sign with positive meaning spend.
func resolveCardType(description, flag string, amount decimal.Decimal) string {
	upper := strings.ToUpper(strings.TrimSpace(flag))
	if upper != "" {
		if strings.Contains(upper, "CR") || upper == "CREDIT" {
			return models.TypeCredit
		}
		if strings.Contains(upper, "DR") || upper == "DEBIT" {
			return models.TypeDebit
		}
	}

	descUpper := strings.ToUpper(description)
	if strings.Contains(descUpper, "CREDIT") || strings.Contains(descUpper, "REFUND") ||
		strings.Contains(descUpper, "REVERSAL") || strings.Contains(descUpper, "CASHBACK") {
		return models.TypeCredit
	}

	if amount.Sign() > 0 {
		return models.TypeDebit
	}
	return models.TypeCredit
}
