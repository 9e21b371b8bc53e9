package models

import "time"

// RuleDefinition is a user-authored categorization rule. Pattern is matched
// case-insensitively against transaction descriptions, either as a regular
// expression or a literal substring; higher Priority wins, ties broken by
// original order.
type RuleDefinition struct {
	ID              int64     `json:"id,omitempty"`
	RuleName        string    `json:"ruleName"`
	CategoryName    string    `json:"categoryName"`
	Pattern         string    `json:"pattern"`
	Priority        int       `json:"priority"`
	Enabled         bool      `json:"enabled"`
	IncludeInTotals bool      `json:"includeInTotals"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt,omitempty"`
}
