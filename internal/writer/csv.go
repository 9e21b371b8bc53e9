// Package writer renders stored transactions as CSV for export.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

// CSVWriter writes transactions to CSV format.
type CSVWriter struct{}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, transactions []models.Transaction) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	header := []string{"Date", "Description", "Ref No", "Type", "Amount", "Balance",
		"Category", "Credit Card", "Included In Totals"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range transactions {
		balance := ""
		if txn.Balance.Valid {
			balance = txn.Balance.Decimal.StringFixed(2)
		}
		row := []string{
			txn.Date.String(),
			txn.Description,
			txn.RefNo,
			txn.Type,
			txn.Amount.StringFixed(2),
			balance,
			txn.Category,
			strconv.FormatBool(txn.IsCreditCardTransaction),
			strconv.FormatBool(txn.IncludeInTotals),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
