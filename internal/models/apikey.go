package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is the persisted shape of an issued credential. KeyValue is the full
// secret and never serializes; KeyPrefix is the non-secret display prefix.
type APIKey struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	KeyValue    string     `json:"-"`
	KeyPrefix   string     `json:"key_prefix"`
	Permissions []string   `json:"permissions"`
	UsageCount  int        `json:"usage_count"`
	RateLimit   int        `json:"rate_limit"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
