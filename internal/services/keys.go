package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/strahinja/dandi-api/internal/models"
	"github.com/strahinja/dandi-api/pkg/dto"
)

// KeyService is the facade the HTTP layer talks to. Management operations are
// owner-scoped pass-throughs to the store; the public validation and metering
// paths go through the validator and rate limiter and are authorized by
// possession of the raw key alone.
type KeyService struct {
	store     *APIKeyService
	validator *APIKeyValidator
	limiter   *RateLimiter
}

func NewKeyService(store *APIKeyService, validator *APIKeyValidator, limiter *RateLimiter) *KeyService {
	return &KeyService{store: store, validator: validator, limiter: limiter}
}

func (s *KeyService) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]dto.APIKeyDisplay, error) {
	keys, err := s.store.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	displays := make([]dto.APIKeyDisplay, 0, len(keys))
	for i := range keys {
		displays = append(displays, dto.NewAPIKeyDisplay(&keys[i]))
	}
	return displays, nil
}

func (s *KeyService) Create(ctx context.Context, ownerID uuid.UUID, params CreateAPIKeyParams) (*dto.APIKeyDisplay, error) {
	key, err := s.store.Create(ctx, ownerID, params)
	if err != nil {
		return nil, err
	}
	display := dto.NewAPIKeyDisplay(key)
	return &display, nil
}

func (s *KeyService) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateAPIKeyParams) (*dto.APIKeyDisplay, error) {
	key, err := s.store.Update(ctx, id, ownerID, params)
	if err != nil {
		return nil, err
	}
	display := dto.NewAPIKeyDisplay(key)
	return &display, nil
}

func (s *KeyService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.store.Delete(ctx, id, ownerID)
}

// ValidatePublic resolves a raw key presented by an anonymous caller and
// returns the display record. The caller already holds the full secret, so
// echoing it back leaks nothing.
func (s *KeyService) ValidatePublic(ctx context.Context, rawValue string) (*dto.APIKeyDisplay, error) {
	key, err := s.validator.Validate(ctx, rawValue)
	if err != nil {
		return nil, err
	}
	display := dto.NewAPIKeyDisplay(key)
	return &display, nil
}

// ValidateInfo is ValidatePublic without any key material in the response,
// for callers that only need to know the key's standing.
func (s *KeyService) ValidateInfo(ctx context.Context, rawValue string) (*dto.APIKeyInfo, error) {
	key, err := s.validator.Validate(ctx, rawValue)
	if err != nil {
		return nil, err
	}
	info := dto.NewAPIKeyInfo(key)
	return &info, nil
}

// AuthorizeAndMeter admits one metered use of the presented key. The usage
// increment has already been committed when this returns, so an aborted
// caller cannot undercount.
func (s *KeyService) AuthorizeAndMeter(ctx context.Context, rawValue string) (*models.APIKey, error) {
	return s.limiter.CheckAndReserve(ctx, rawValue)
}

// RecordUse meters one use of a key by id without a quota check. Backs the
// owner-facing usage endpoint.
func (s *KeyService) RecordUse(ctx context.Context, id uuid.UUID) error {
	return s.limiter.RecordUse(ctx, id)
}

// GetForOwner returns a single owner-scoped key as a display record.
func (s *KeyService) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (*dto.APIKeyDisplay, error) {
	key, err := s.store.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	display := dto.NewAPIKeyDisplay(key)
	return &display, nil
}
