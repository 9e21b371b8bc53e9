package parser

import (
	"strings"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

// DetectBank classifies a statement's issuing bank from its header lines.
// The lines are joined and uppercased, and the first bank in enumeration
// order with an identifier substring match wins. Never fails: unmatched
// documents are BankUnknown.
func DetectBank(headerLines []string) models.BankType {
	combined := strings.ToUpper(strings.Join(headerLines, " "))
	if strings.TrimSpace(combined) == "" {
		return models.BankUnknown
	}
	for _, bank := range models.Banks {
		for _, id := range bank.Identifiers() {
			if strings.Contains(combined, id) {
				return bank
			}
		}
	}
	return models.BankUnknown
}
