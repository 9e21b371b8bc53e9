package models

// Tag is a merchant token extracted from transaction descriptions, counted
// across uploads.
type Tag struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	UsageCount int    `json:"usageCount"`
}
