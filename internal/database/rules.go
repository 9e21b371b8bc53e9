package database

import (
	"database/sql"
	"fmt"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

const ruleColumns = `id, rule_name, category_name, pattern, priority, enabled,
	include_in_totals, created_at, updated_at`

// ListRules returns every rule definition in insertion order, which the rule
// engine relies on for stable priority ties.
func (db *DB) ListRules() ([]models.RuleDefinition, error) {
	rows, err := db.Query(`SELECT ` + ruleColumns + ` FROM rule_definitions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []models.RuleDefinition
	for rows.Next() {
		r, err := scanRule(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// GetRule returns one rule by id.
func (db *DB) GetRule(id int64) (*models.RuleDefinition, error) {
	row := db.QueryRow(`SELECT `+ruleColumns+` FROM rule_definitions WHERE id = ?`, id)
	r, err := scanRule(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("rule %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query rule: %w", err)
	}
	return &r, nil
}

// GetRuleByName returns one rule by its unique name, or nil when absent.
func (db *DB) GetRuleByName(name string) (*models.RuleDefinition, error) {
	row := db.QueryRow(`SELECT `+ruleColumns+` FROM rule_definitions WHERE rule_name = ?`, name)
	r, err := scanRule(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query rule: %w", err)
	}
	return &r, nil
}

// CreateRule inserts a rule definition. A name collision returns
// ErrDuplicate.
func (db *DB) CreateRule(r *models.RuleDefinition) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO rule_definitions (rule_name, category_name, pattern, priority, enabled, include_in_totals)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.RuleName, r.CategoryName, r.Pattern, r.Priority, r.Enabled, r.IncludeInTotals)
	if err != nil {
		return 0, mapConstraintErr(err)
	}
	return result.LastInsertId()
}

// UpdateRule rewrites a rule definition in place.
func (db *DB) UpdateRule(r *models.RuleDefinition) error {
	result, err := db.Exec(`
		UPDATE rule_definitions
		SET rule_name = ?, category_name = ?, pattern = ?, priority = ?, enabled = ?,
		    include_in_totals = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, r.RuleName, r.CategoryName, r.Pattern, r.Priority, r.Enabled, r.IncludeInTotals, r.ID)
	if err != nil {
		return mapConstraintErr(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("rule %d not found", r.ID)
	}
	return nil
}

// DeleteRule removes one rule.
func (db *DB) DeleteRule(id int64) error {
	result, err := db.Exec(`DELETE FROM rule_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("rule %d not found", id)
	}
	return nil
}

// CountRules returns the number of stored rule definitions.
func (db *DB) CountRules() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM rule_definitions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rules: %w", err)
	}
	return n, nil
}

// DeleteAllRules wipes the rule_definitions table and returns the number of
// rows removed.
func (db *DB) DeleteAllRules() (int64, error) {
	result, err := db.Exec(`DELETE FROM rule_definitions`)
	if err != nil {
		return 0, fmt.Errorf("delete rules: %w", err)
	}
	return result.RowsAffected()
}

func scanRule(scan func(dest ...any) error) (models.RuleDefinition, error) {
	var r models.RuleDefinition
	err := scan(&r.ID, &r.RuleName, &r.CategoryName, &r.Pattern, &r.Priority,
		&r.Enabled, &r.IncludeInTotals, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
