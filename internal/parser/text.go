package parser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/expense-tracker/internal/extractor"
	"github.com/insightdelivered/expense-tracker/internal/models"
)

const maxBoundaryLines = 30

var (
	textDatePattern   = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	textDateISO       = regexp.MustCompile(`(\d{4}[/-]\d{1,2}[/-]\d{1,2})`)
	textAmountPattern = regexp.MustCompile(`([\d,]+\.\d{2})`)
	refNoPattern      = regexp.MustCompile(`(?:REF|CHQ|CHEQUE|REF\.?\s*NO)[:\s]+(\d+)`)
	longNumberPattern = regexp.MustCompile(`(\d{10,})`)
)

// TextParser handles PDF statements and pre-extracted plain text. PDFs may
// be password protected; extractor errors distinguish a missing password from
// a wrong one.
type TextParser struct {
	log    zerolog.Logger
	engine Categorizer
}

func NewTextParser(log zerolog.Logger, engine Categorizer) *TextParser {
	return &TextParser{log: log, engine: engine}
}

func (p *TextParser) Supports(filename string) bool {
	return hasExtension(filename, ".pdf", ".txt")
}

func (p *TextParser) Parse(data []byte, password string) (*models.ParseResult, error) {
	var lines []string
	if bytes.HasPrefix(data, []byte("%PDF")) {
		extracted, err := extractor.ExtractLines(data, password)
		if err != nil {
			return nil, err
		}
		lines = extracted
	} else {
		for _, ln := range strings.Split(string(data), "\n") {
			if s := strings.TrimSpace(ln); s != "" {
				lines = append(lines, s)
			}
		}
	}

	headerCount := 10
	if headerCount > len(lines) {
		headerCount = len(lines)
	}
	result := &models.ParseResult{
		Bank: DetectBank(lines[:headerCount]),
	}
	p.log.Info().Str("bank", string(result.Bank)).Msg("detected bank")

	first := FirstTransactionLine(lines, maxBoundaryLines)
	if first == -1 {
		p.log.Warn().Msg("no transaction lines found in document")
		return result, nil
	}

	for i := first; i < len(lines); i++ {
		if !IsTransactionLine(lines[i]) {
			continue
		}
		t := p.parseLine(lines[i])
		if t == nil {
			p.log.Warn().Int("line", i).Msg("skipping unparseable statement line")
			continue
		}
		p.engine.Categorize(t)
		result.Transactions = append(result.Transactions, *t)
	}

	p.log.Info().Int("count", len(result.Transactions)).Msg("parsed text statement")
	return result, nil
}

// parseLine applies the positional amount heuristic: the last amount on a
// line is the running balance and the second-to-last is the transaction
// amount. A single amount serves as both. Lines with more than two amounts
// keep the same rule; stricter validation would change outcomes on statements
// that embed decimal-looking reference numbers.
func (p *TextParser) parseLine(line string) *models.Transaction {
	dateStr := textDatePattern.FindString(line)
	if dateStr == "" {
		dateStr = textDateISO.FindString(line)
	}
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil
	}

	var amounts []decimal.Decimal
	for _, m := range textAmountPattern.FindAllString(line, -1) {
		if d, err := ParseAmount(m); err == nil {
			amounts = append(amounts, d)
		}
	}
	if len(amounts) == 0 {
		return nil
	}

	t := &models.Transaction{
		Date:            date,
		Description:     extractLineDescription(line),
		RefNo:           extractLineRefNo(line),
		Category:        models.CategoryMiscellaneous,
		IncludeInTotals: true,
	}

	if len(amounts) >= 2 {
		t.Balance.Decimal = amounts[len(amounts)-1]
		t.Balance.Valid = true
		t.Amount = amounts[len(amounts)-2].Abs()

		upper := strings.ToUpper(line)
		if strings.Contains(upper, "CR") || strings.Contains(upper, "CREDIT") ||
			strings.Contains(upper, "SALARY") || strings.Contains(upper, "NEFT CR") {
			t.Type = models.TypeCredit
		} else {
			t.Type = models.TypeDebit
		}
	} else {
		t.Amount = amounts[0].Abs()
		t.Balance.Decimal = amounts[0]
		t.Balance.Valid = true
		t.Type = models.TypeDebit
	}

	return t
}

func extractLineDescription(line string) string {
	desc := textDatePattern.ReplaceAllString(line, "")
	desc = textAmountPattern.ReplaceAllString(desc, "")
	return strings.Join(strings.Fields(desc), " ")
}

func extractLineRefNo(line string) string {
	if m := refNoPattern.FindStringSubmatch(strings.ToUpper(line)); m != nil {
		return m[1]
	}
	if m := longNumberPattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}
