package database

import (
	"fmt"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

// UpsertTag records one use of a merchant tag, creating it on first sight.
func (db *DB) UpsertTag(name string) error {
	_, err := db.Exec(`
		INSERT INTO tags (name, usage_count) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET usage_count = usage_count + 1
	`, name)
	if err != nil {
		return fmt.Errorf("upsert tag: %w", err)
	}
	return nil
}

// TopTags returns the most used tags.
func (db *DB) TopTags(limit int) ([]models.Tag, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, name, usage_count FROM tags
		ORDER BY usage_count DESC, name LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.UsageCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteAllTags wipes the tags table and returns the number of rows removed.
func (db *DB) DeleteAllTags() (int64, error) {
	result, err := db.Exec(`DELETE FROM tags`)
	if err != nil {
		return 0, fmt.Errorf("delete tags: %w", err)
	}
	return result.RowsAffected()
}
