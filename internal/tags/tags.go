// Package tags derives merchant tags from transaction descriptions.
package tags

import (
	"strings"

	"github.com/insightdelivered/expense-tracker/internal/normalize"
)

// Extractor produces zero or more tags for a transaction description.
type Extractor interface {
	Extract(description string) []string
}

// MerchantExtractor tags each transaction with its normalized merchant
// token.
type MerchantExtractor struct{}

func NewMerchantExtractor() *MerchantExtractor {
	return &MerchantExtractor{}
}

func (e *MerchantExtractor) Extract(description string) []string {
	merchant := normalize.Merchant(description)
	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return nil
	}
	return []string{merchant}
}
