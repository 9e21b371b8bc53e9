// Package normalize collapses noisy statement descriptions into merchant
// tokens usable for keyword matching and tag extraction.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	digitsPattern     = regexp.MustCompile(`\d+`)
	nonAllowedPattern = regexp.MustCompile(`[^a-z/\s]`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
	upiSplitPattern   = regexp.MustCompile(`[/-]`)
	tokenSplitPattern = regexp.MustCompile(`[_\s]+`)
)

// Merchant extracts a lowercase merchant token from a raw transaction
// description. UPI, POS and card-network encodings are recognized; anything
// else falls through to plain text cleanup.
//
//	"UPI/400123456789/Swiggy_BLR/paytm" -> "swiggy"
//	"POS 402912 SWIGGY BLR IN"          -> "swiggy"
//	"AMZ*Amazon Marketplace"            -> "amazon"
func Merchant(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := strings.ToLower(strings.TrimSpace(raw))

	var candidate string
	switch {
	case strings.Contains(text, "upi/") || strings.Contains(text, "upi-"):
		candidate = upiMerchant(text)
	case strings.HasPrefix(text, "pos "):
		candidate = posMerchant(text)
	case strings.HasPrefix(text, "amz") || strings.Contains(text, "amazon"):
		candidate = "amazon"
	default:
		candidate = text
	}
	if candidate == "" {
		candidate = text
	}

	cleaned := Clean(candidate)
	if cleaned != "" {
		return cleaned
	}

	// Cleanup stripped everything; fall back to the first alphabetic token
	// from the original text.
	if tok := firstWordToken(text); tok != "" {
		return tok
	}
	return cleaned
}

// Clean applies the final normalization pass: digits removed, everything
// outside [a-z / space] removed, whitespace collapsed.
func Clean(s string) string {
	s = strings.ToLower(s)
	s = digitsPattern.ReplaceAllString(s, " ")
	s = nonAllowedPattern.ReplaceAllString(s, " ")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// upiMerchant picks the merchant segment out of a UPI narration. Segments
// that are the literal "upi", purely numeric, or the word "payment" are
// routing noise, not the merchant.
func upiMerchant(text string) string {
	for _, segment := range upiSplitPattern.Split(text, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" || segment == "upi" || segment == "payment" || isNumeric(segment) {
			continue
		}
		for _, tok := range tokenSplitPattern.Split(segment, -1) {
			if len(tok) > 2 && hasLetter(tok) {
				return tok
			}
		}
	}
	return ""
}

// posMerchant strips the POS prefix and terminal digits, keeping the first
// remaining token.
func posMerchant(text string) string {
	rest := strings.TrimPrefix(text, "pos ")
	rest = digitsPattern.ReplaceAllString(rest, " ")
	for _, tok := range strings.Fields(rest) {
		return tok
	}
	return ""
}

func firstWordToken(text string) string {
	for _, tok := range strings.Fields(text) {
		if len(tok) > 2 && hasLetter(tok) {
			return tok
		}
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
