package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/strahinja/dandi-api/internal/keygen"
	"github.com/strahinja/dandi-api/internal/models"
)

type CreateAPIKeyRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Permissions []string `json:"permissions"`
	RateLimit   *int     `json:"rateLimit,omitempty"`
}

type UpdateAPIKeyRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type ValidateKeyRequest struct {
	KeyValue string `json:"keyValue"`
}

type ValidateAPIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// APIKeyDisplay is the dashboard-facing shape of a key: masked value for the
// table, full value for the reveal/copy action, calendar dates only.
type APIKeyDisplay struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Usage       int       `json:"usage"`
	Key         string    `json:"key"`
	FullKey     string    `json:"fullKey"`
	CreatedAt   string    `json:"createdAt"`
	LastUsed    string    `json:"lastUsed"`
	Permissions []string  `json:"permissions"`
}

// APIKeyInfo is the consumer-safe shape returned to callers who presented a
// raw key for validation: no key material at all.
type APIKeyInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Usage       int       `json:"usage"`
	Permissions []string  `json:"permissions"`
	CreatedAt   string    `json:"createdAt"`
	LastUsed    string    `json:"lastUsed"`
}

type ValidateKeyResponse struct {
	IsValid bool        `json:"isValid"`
	KeyInfo *APIKeyInfo `json:"keyInfo,omitempty"`
	Error   string      `json:"error,omitempty"`
}

const displayDateLayout = "2006-01-02"

// NewAPIKeyDisplay maps the persisted record to its display counterpart.
func NewAPIKeyDisplay(k *models.APIKey) APIKeyDisplay {
	return APIKeyDisplay{
		ID:          k.ID,
		Name:        k.Name,
		Description: k.Description,
		Type:        k.Type,
		Usage:       k.UsageCount,
		Key:         keygen.Mask(k.KeyValue),
		FullKey:     k.KeyValue,
		CreatedAt:   k.CreatedAt.Format(displayDateLayout),
		LastUsed:    formatLastUsed(k.LastUsedAt),
		Permissions: permissionsOrEmpty(k.Permissions),
	}
}

// NewAPIKeyInfo maps the persisted record to the consumer-safe shape.
func NewAPIKeyInfo(k *models.APIKey) APIKeyInfo {
	return APIKeyInfo{
		ID:          k.ID,
		Name:        k.Name,
		Description: k.Description,
		Type:        k.Type,
		Usage:       k.UsageCount,
		Permissions: permissionsOrEmpty(k.Permissions),
		CreatedAt:   k.CreatedAt.Format(displayDateLayout),
		LastUsed:    formatLastUsed(k.LastUsedAt),
	}
}

func formatLastUsed(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return t.Format(displayDateLayout)
}

func permissionsOrEmpty(perms []string) []string {
	if perms == nil {
		return []string{}
	}
	return perms
}
