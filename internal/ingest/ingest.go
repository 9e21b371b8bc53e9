// Package ingest persists parsed transaction batches, partitioning each
// batch into saved rows, duplicates, and hard errors. A duplicate is a
// counted outcome, never a batch failure.
package ingest

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/expense-tracker/internal/database"
	"github.com/insightdelivered/expense-tracker/internal/dedup"
	"github.com/insightdelivered/expense-tracker/internal/models"
	"github.com/insightdelivered/expense-tracker/internal/tags"
)

// Result reports the outcome of one batch save.
type Result struct {
	BatchID    string   `json:"batchId"`
	Saved      int      `json:"saved"`
	Duplicates int      `json:"duplicates"`
	Errors     int      `json:"errors"`
	Details    []string `json:"details,omitempty"`
}

type Coordinator struct {
	db   *database.DB
	tags tags.Extractor
	log  zerolog.Logger
}

func NewCoordinator(log zerolog.Logger, db *database.DB, extractor tags.Extractor) *Coordinator {
	return &Coordinator{db: db, tags: extractor, log: log}
}

// SaveBatch stores each transaction in turn. Missing hashes and categories
// are filled in before insert; card parsers set their own fingerprint hash
// upstream. Tags are recorded only for rows that actually land.
func (c *Coordinator) SaveBatch(transactions []models.Transaction) Result {
	result := Result{BatchID: uuid.NewString()}

	for i := range transactions {
		t := &transactions[i]
		if t.Category == "" {
			t.Category = models.CategoryMiscellaneous
		}
		if t.TransactionHash == "" {
			t.TransactionHash = dedup.TransactionHash(t.Description, t.RefNo, t.Date, t.Amount, t.Type)
		}

		_, err := c.db.InsertTransaction(t)
		switch {
		case errors.Is(err, database.ErrDuplicate):
			result.Duplicates++
			result.Details = append(result.Details,
				fmt.Sprintf("duplicate: %s %s %s %s", t.Date, t.Type, t.Amount, t.Description))
		case err != nil:
			result.Errors++
			c.log.Error().Err(err).Str("description", t.Description).Msg("failed to save transaction")
		default:
			result.Saved++
			for _, tag := range c.tags.Extract(t.Description) {
				if err := c.db.UpsertTag(tag); err != nil {
					c.log.Warn().Err(err).Str("tag", tag).Msg("failed to record tag")
				}
			}
		}
	}

	c.log.Info().
		Str("batch", result.BatchID).
		Int("saved", result.Saved).
		Int("duplicates", result.Duplicates).
		Int("errors", result.Errors).
		Msg("batch save complete")
	return result
}
