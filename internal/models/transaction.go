package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction types. Amounts are always non-negative; the direction of money
// movement is carried by Type.
const (
	TypeDebit  = "DEBIT"
	TypeCredit = "CREDIT"
)

// Default categories assigned before the rule engine runs.
const (
	CategoryMiscellaneous = "Miscellaneous"
	CategoryTransfers     = "Transfers"
)

// Transaction is a single statement entry. A freshly parsed transaction is a
// draft: it has no ID and may have no hash yet (the save path fills those in).
type Transaction struct {
	ID          int64               `json:"id,omitempty"`
	Date        civil.Date          `json:"date"`
	Description string              `json:"description"`
	RefNo       string              `json:"refNo,omitempty"`
	Amount      decimal.Decimal     `json:"amount"`
	Type        string              `json:"type"` // DEBIT or CREDIT
	Balance     decimal.NullDecimal `json:"balance"`
	Category    string              `json:"category"`

	IsCreditCardTransaction bool `json:"isCreditCardTransaction"`
	IsCreditCardPayment     bool `json:"isCreditCardPayment"`
	IncludeInTotals         bool `json:"includeInTotals"`

	// TransactionHash is the primary dedup key. Credit-card statements carry
	// no reliable reference number, so they use FingerprintHash instead (and
	// mirror it into TransactionHash).
	TransactionHash string `json:"transactionHash,omitempty"`
	FingerprintHash string `json:"fingerprintHash,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// ParseResult is what a statement parser returns: the categorized draft
// transactions plus the bank identified from the document header.
type ParseResult struct {
	Transactions []Transaction `json:"transactions"`
	Bank         BankType      `json:"bank"`
}
