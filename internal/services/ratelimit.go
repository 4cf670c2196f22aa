package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/strahinja/dandi-api/internal/models"
)

// RateLimiter enforces each key's usage quota. Admission is a single atomic
// conditional increment in the store, so two requests racing for the last
// unit of quota cannot both get through.
type RateLimiter struct {
	validator *APIKeyValidator
	store     *APIKeyService
}

func NewRateLimiter(validator *APIKeyValidator, store *APIKeyService) *RateLimiter {
	return &RateLimiter{validator: validator, store: store}
}

// CheckAndReserve validates the raw credential and claims one unit of quota.
// On success the returned record reflects the reservation. Exhausted keys get
// a QuotaExceededError carrying the current usage and limit.
func (rl *RateLimiter) CheckAndReserve(ctx context.Context, rawValue string) (*models.APIKey, error) {
	key, err := rl.validator.Validate(ctx, rawValue)
	if err != nil {
		return nil, err
	}

	if key.UsageCount >= key.RateLimit {
		return nil, &QuotaExceededError{Usage: key.UsageCount, Limit: key.RateLimit}
	}

	reserved, err := rl.store.ReserveUsage(ctx, key.ID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		// Lost the race for the last unit; re-read for an accurate message.
		fresh, err := rl.store.GetByID(ctx, key.ID)
		if err != nil {
			return nil, &QuotaExceededError{Usage: key.RateLimit, Limit: key.RateLimit}
		}
		return nil, &QuotaExceededError{Usage: fresh.UsageCount, Limit: fresh.RateLimit}
	}

	key.UsageCount++
	return key, nil
}

// RecordUse unconditionally meters one use of a key. It backs the owner-facing
// usage endpoint, where the quota check has already happened elsewhere.
func (rl *RateLimiter) RecordUse(ctx context.Context, id uuid.UUID) error {
	return rl.store.IncrementUsage(ctx, id)
}

// RateLimitInfo is a point-in-time view of a key's quota.
type RateLimitInfo struct {
	Usage     int
	Limit     int
	Remaining int
}

// Info reports usage, limit and remaining quota for a raw credential without
// consuming any of it.
func (rl *RateLimiter) Info(ctx context.Context, rawValue string) (*RateLimitInfo, error) {
	key, err := rl.validator.Validate(ctx, rawValue)
	if err != nil {
		return nil, err
	}

	remaining := key.RateLimit - key.UsageCount
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimitInfo{Usage: key.UsageCount, Limit: key.RateLimit, Remaining: remaining}, nil
}
