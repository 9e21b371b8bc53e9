// Package parser converts raw statement documents into draft transactions.
// Three pipelines share the same primitives: a bank spreadsheet parser, a
// text/PDF line parser, and a credit-card spreadsheet parser.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// dateLayouts in match order. Go's "2" and "1" verbs accept both padded and
// unpadded day/month, so this list covers dd-MM-yyyy, d-M-yyyy and the
// two-digit-year forms in one pass.
var dateLayouts = []string{
	"2-1-2006",
	"2-1-06",
	"2006-1-2",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan-2-2006",
}

// Serial values in this range cover statement dates from 1954 to 2064.
// Spreadsheet serial day 0 is 1899-12-30.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	serialMin = 20000
	serialMax = 60000
)

var dashNormalizer = regexp.MustCompile(`[/.\s]+`)

// ParseDate parses a statement date cell. Accepts slash, dash and dot
// separated numeric dates, month-name dates, and raw spreadsheet serial
// numbers. First matching format wins.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, fmt.Errorf("empty date cell")
	}

	// Date cells read from binary spreadsheets often surface as bare serial
	// numbers. Only integer strings qualify; amounts carry decimal points.
	if serial, err := strconv.Atoi(s); err == nil {
		if serial >= serialMin && serial <= serialMax {
			return civil.DateOf(serialEpoch.AddDate(0, 0, serial)), nil
		}
		return civil.Date{}, fmt.Errorf("numeric cell %q is not a date serial", s)
	}

	cleaned := dashNormalizer.ReplaceAllString(s, "-")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognized date %q", s)
}

// IsDate reports whether the cell holds a parseable date.
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

var amountCleaner = strings.NewReplacer(",", "", "₹", "", "$", "", " ", "")

// ParseAmount parses a money cell, tolerating thousands separators and
// currency symbols.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount cell")
	}
	cleaned := amountCleaner.Replace(s)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unrecognized amount %q", s)
	}
	return d, nil
}

// IsPositiveAmount reports whether the cell holds a number greater than zero.
func IsPositiveAmount(s string) bool {
	d, err := ParseAmount(s)
	return err == nil && d.IsPositive()
}
