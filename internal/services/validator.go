package services

import (
	"context"
	"strings"

	"github.com/strahinja/dandi-api/internal/models"
)

// APIKeyValidator resolves a raw credential to its stored record. It never
// mutates anything; metering is the RateLimiter's job.
type APIKeyValidator struct {
	store *APIKeyService
}

func NewAPIKeyValidator(store *APIKeyService) *APIKeyValidator {
	return &APIKeyValidator{store: store}
}

// Validate trims the input and looks it up by value. Empty input returns
// ErrKeyMissing, an unknown value ErrKeyInvalid, and store failures propagate
// as ErrStoreUnavailable.
func (v *APIKeyValidator) Validate(ctx context.Context, rawValue string) (*models.APIKey, error) {
	rawValue = strings.TrimSpace(rawValue)
	if rawValue == "" {
		return nil, ErrKeyMissing
	}
	return v.store.GetByValue(ctx, rawValue)
}
