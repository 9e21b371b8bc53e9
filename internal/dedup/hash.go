// Package dedup derives the content-addressed keys used to reject duplicate
// transactions at the persistence boundary.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// TransactionHash is the primary dedup key for bank statement entries:
// SHA-256 over "description|refNo|date|amount|type". Empty fields serialize
// as empty strings — a missing reference number hashes the same as an empty
// one, which is intentional.
func TransactionHash(description, refNo string, date civil.Date, amount decimal.Decimal, txnType string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(description))
	sb.WriteByte('|')
	sb.WriteString(strings.TrimSpace(refNo))
	sb.WriteByte('|')
	sb.WriteString(date.String())
	sb.WriteByte('|')
	sb.WriteString(amount.String())
	sb.WriteByte('|')
	sb.WriteString(strings.ToUpper(strings.TrimSpace(txnType)))
	return hexDigest(sb.String())
}

// Fingerprint is the looser dedup key used for credit-card statements, which
// carry no reliable reference number: SHA-256 over
// "date|normalizedDescription|amount(2dp)|type". Description normalization
// here is only lowercase + whitespace collapsing — word order and most
// punctuation survive.
func Fingerprint(date civil.Date, description string, amount decimal.Decimal, txnType string) string {
	var sb strings.Builder
	sb.WriteString(date.String())
	sb.WriteByte('|')
	sb.WriteString(NormalizeDescription(description))
	sb.WriteByte('|')
	sb.WriteString(amount.StringFixed(2))
	sb.WriteByte('|')
	sb.WriteString(strings.ToUpper(strings.TrimSpace(txnType)))
	return hexDigest(sb.String())
}

// NormalizeDescription lowercases, trims, and collapses internal whitespace
// runs to a single space.
func NormalizeDescription(description string) string {
	s := strings.ToLower(strings.TrimSpace(description))
	if s == "" {
		return ""
	}
	return whitespaceRuns.ReplaceAllString(s, " ")
}

func hexDigest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
