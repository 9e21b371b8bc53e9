package parser

import "strings"

// ColumnMap holds the semantic role of each spreadsheet column for a bank
// statement. The zero-value defaults match the most common Indian bank export
// layout and apply whenever no header cell names a role.
type ColumnMap struct {
	Date        int
	Description int
	RefNo       int
	Withdrawal  int
	Deposit     int
	Balance     int
}

func defaultColumnMap() ColumnMap {
	return ColumnMap{
		Date:        0,
		Description: 1,
		RefNo:       2,
		Withdrawal:  4,
		Deposit:     5,
		Balance:     6,
	}
}

// DetectColumns maps roles to indices from the header row preceding the first
// data row. Each role is matched independently; when several header cells
// qualify for a role the last one wins. A nil header keeps the defaults.
func DetectColumns(header []string) ColumnMap {
	cm := defaultColumnMap()
	if header == nil {
		return cm
	}
	for i, cell := range header {
		upper := strings.ToUpper(strings.TrimSpace(cell))
		if upper == "" {
			continue
		}
		if strings.Contains(upper, "DATE") && !strings.Contains(upper, "VALUE") {
			cm.Date = i
		}
		if strings.Contains(upper, "DESCRIPTION") || strings.Contains(upper, "NARRATION") ||
			strings.Contains(upper, "PARTICULARS") {
			cm.Description = i
		}
		if strings.Contains(upper, "REF") || strings.Contains(upper, "CHQ") ||
			strings.Contains(upper, "CHEQUE") {
			cm.RefNo = i
		}
		// Trailing space on "DR " so "DRAFT" does not register as debit.
		if strings.Contains(upper, "WITHDRAWAL") || strings.Contains(upper, "DEBIT") ||
			strings.Contains(upper, "DR ") {
			cm.Withdrawal = i
		}
		if strings.Contains(upper, "DEPOSIT") || strings.Contains(upper, "CREDIT") ||
			strings.Contains(upper, "CR ") {
			cm.Deposit = i
		}
		if strings.Contains(upper, "BALANCE") || strings.Contains(upper, "CLOSING") {
			cm.Balance = i
		}
	}
	return cm
}

// CardColumnMap is the credit-card layout: one signed amount column plus a
// debit/credit flag column instead of two amount columns.
type CardColumnMap struct {
	Date        int
	Description int
	Amount      int
	DebitCredit int
}

func defaultCardColumnMap() CardColumnMap {
	return CardColumnMap{
		Date:        2,
		Description: 3,
		Amount:      4,
		DebitCredit: 5,
	}
}

// DetectCardColumns uses strict whole-cell matching; card exports have fixed
// header names and substring matching would misfire on "Transaction Type".
func DetectCardColumns(header []string) CardColumnMap {
	cm := defaultCardColumnMap()
	if header == nil {
		return cm
	}
	for i, cell := range header {
		switch strings.ToUpper(strings.TrimSpace(cell)) {
		case "DATE":
			cm.Date = i
		case "DESCRIPTION":
			cm.Description = i
		case "AMT":
			cm.Amount = i
		case "DEBIT / CREDIT":
			cm.DebitCredit = i
		}
	}
	return cm
}
