package parser

import (
	"regexp"
	"strings"
)

// headerKeywords disqualify a row as a transaction when a cell (or a whole
// text line) equals one exactly. Exact match, not substring: a description
// that merely contains "CREDIT" must not be mistaken for a column header.
var headerKeywords = []string{
	"DATE", "NARRATION", "DESCRIPTION", "WITHDRAWAL", "DEPOSIT", "AMOUNT",
	"BALANCE", "CREDIT", "DEBIT", "TRANSACTION", "PARTICULARS", "CHQ",
	"REF", "VALUE", "CLOSING", "OPENING", "SR", "S.NO", "SL.NO",
}

// summaryKeywords disqualify by substring match.
var summaryKeywords = []string{
	"OPENING BALANCE", "CLOSING BALANCE", "TOTAL", "GRAND TOTAL",
	"SUMMARY", "BALANCE B/F", "BALANCE C/F", "SUBTOTAL",
}

var (
	lineDateDDMM = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	lineDateYYYY = regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`)
	lineDigits   = regexp.MustCompile(`\d`)
)

func isHeaderValue(value string) bool {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for _, kw := range headerKeywords {
		if upper == kw {
			return true
		}
	}
	return false
}

func isSummaryValue(value string) bool {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for _, kw := range summaryKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// IsTransactionRow decides whether a spreadsheet row is a genuine data row:
// it needs a parseable date and a positive amount in its first cells, and no
// cell may be a header token or contain a summary phrase.
func IsTransactionRow(cells []string) bool {
	hasDate := false
	hasAmount := false

	limit := len(cells)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		cell := cells[i]
		if strings.TrimSpace(cell) == "" {
			continue
		}
		if isHeaderValue(cell) || isSummaryValue(cell) {
			return false
		}
		if !hasDate && IsDate(cell) {
			hasDate = true
		}
		if !hasAmount && IsPositiveAmount(cell) {
			hasAmount = true
		}
	}
	return hasDate && hasAmount
}

// IsTransactionLine is the text-document variant: the line must carry a date
// pattern and at least one digit, and must be neither a bare header token nor
// a summary line.
func IsTransactionLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if isHeaderValue(trimmed) || isSummaryValue(trimmed) {
		return false
	}
	hasDate := lineDateDDMM.MatchString(trimmed) || lineDateYYYY.MatchString(trimmed)
	return hasDate && lineDigits.MatchString(trimmed)
}

// FirstTransactionRow scans at most limit rows and returns the index of the
// first data row, or -1 when the document has no recognizable table.
func FirstTransactionRow(rows [][]string, limit int) int {
	for i, row := range rows {
		if i >= limit {
			break
		}
		if IsTransactionRow(row) {
			return i
		}
	}
	return -1
}

// FirstTransactionLine is the text variant of FirstTransactionRow.
func FirstTransactionLine(lines []string, limit int) int {
	for i, line := range lines {
		if i >= limit {
			break
		}
		if IsTransactionLine(line) {
			return i
		}
	}
	return -1
}
