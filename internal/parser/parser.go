package parser

import (
	"errors"
	"strings"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

// ErrUnsupportedFileType means no registered parser recognizes the filename.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Categorizer assigns a category and totals flag to a draft transaction.
// Satisfied by rules.Engine.
type Categorizer interface {
	Categorize(t *models.Transaction) bool
}

// StatementParser converts one uploaded document into draft transactions.
// password applies only to encrypted inputs and may be empty. A document in
// which no transaction table can be located yields an empty result, not an
// error; errors are reserved for unreadable or locked documents.
type StatementParser interface {
	Parse(data []byte, password string) (*models.ParseResult, error)
	Supports(filename string) bool
}

// Factory selects a bank-statement parser by filename. Credit-card
// statements have their own upload path and do not route through here.
type Factory struct {
	parsers []StatementParser
}

func NewFactory(parsers ...StatementParser) *Factory {
	return &Factory{parsers: parsers}
}

// ForFile returns the first parser claiming the filename.
func (f *Factory) ForFile(filename string) (StatementParser, error) {
	for _, p := range f.parsers {
		if p.Supports(filename) {
			return p, nil
		}
	}
	return nil, ErrUnsupportedFileType
}

func hasExtension(filename string, exts ...string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
