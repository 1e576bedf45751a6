package model

import "time"

// APIKeyInfo is the database-resident metadata for an API key. Prefix is the
// first three underscore-delimited fields of the raw key (third field cut to
// 8 hex chars) and is safe to log and display; the full secret is stored only
// in the secret store and returned to the caller once, at creation.
type APIKeyInfo struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	CreatedBy  string     `json:"created_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}
