package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/strahinja/dandi-api/internal/database"
	"github.com/strahinja/dandi-api/internal/keygen"
	"github.com/strahinja/dandi-api/internal/models"
)

var (
	// ErrKeyMissing means the caller supplied an empty or whitespace-only key.
	ErrKeyMissing = errors.New("api key is required")
	// ErrKeyInvalid means no key matches the presented value. It is also
	// returned for owner-scoped lookups that miss, so callers cannot tell a
	// nonexistent key from someone else's.
	ErrKeyInvalid = errors.New("api key not found or invalid")
	// ErrKeyNotFound means an owner-scoped target does not exist or belongs
	// to another account.
	ErrKeyNotFound = errors.New("api key not found")
	// ErrStoreUnavailable wraps transport or connection failures talking to
	// the database.
	ErrStoreUnavailable = errors.New("api key store unavailable")
)

// QuotaExceededError reports a key that has used up its rate limit. Usage and
// Limit are included so callers can render an exact message.
type QuotaExceededError struct {
	Usage int
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d/%d requests used", e.Usage, e.Limit)
}

const apiKeyColumns = `id, user_id, name, description, type, key_value, key_prefix,
		permissions, usage_count, rate_limit, last_used_at, created_at`

// APIKeyService is the persistence layer for API keys. All owner-scoped
// operations filter on user_id; GetByValue is the one unscoped read and backs
// the public validation and metering paths.
type APIKeyService struct {
	db               *database.DB
	defaultRateLimit int
}

func NewAPIKeyService(db *database.DB, defaultRateLimit int) *APIKeyService {
	return &APIKeyService{db: db, defaultRateLimit: defaultRateLimit}
}

// CreateAPIKeyParams are the caller-supplied fields of a new key. Everything
// else (id, value, prefix, counters) is assigned at insert.
type CreateAPIKeyParams struct {
	Name        string
	Description string
	Type        string
	Permissions []string
	RateLimit   *int
}

// UpdateAPIKeyParams are the only mutable fields of an existing key.
type UpdateAPIKeyParams struct {
	Name        string
	Description string
	Permissions []string
}

func (s *APIKeyService) Create(ctx context.Context, userID uuid.UUID, params CreateAPIKeyParams) (*models.APIKey, error) {
	keyType := params.Type
	if keyType == "" {
		keyType = keygen.DefaultType
	}

	rateLimit := s.defaultRateLimit
	if params.RateLimit != nil {
		rateLimit = *params.RateLimit
	}

	permissions := params.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	keyValue := keygen.Generate(keyType)
	keyPrefix := keygen.PrefixOf(keyValue)

	row := s.db.Pool.QueryRow(ctx, `
		INSERT INTO api_keys (user_id, name, description, type, key_value, key_prefix, permissions, rate_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+apiKeyColumns+`
	`, userID, params.Name, params.Description, keyType, keyValue, keyPrefix, permissions, rateLimit)

	key, err := scanAPIKey(row)
	if err != nil {
		return nil, storeError(err)
	}
	return key, nil
}

func (s *APIKeyService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(
			&k.ID, &k.UserID, &k.Name, &k.Description, &k.Type, &k.KeyValue,
			&k.KeyPrefix, &k.Permissions, &k.UsageCount, &k.RateLimit,
			&k.LastUsedAt, &k.CreatedAt,
		); err != nil {
			return nil, storeError(err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return keys, nil
}

func (s *APIKeyService) GetByID(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys
		WHERE id = $1
	`, id)

	key, err := scanAPIKey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, storeError(err)
	}
	return key, nil
}

// GetByIDForOwner reports ErrKeyNotFound both when the key does not exist and
// when it belongs to another user.
func (s *APIKeyService) GetByIDForOwner(ctx context.Context, id, userID uuid.UUID) (*models.APIKey, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	key, err := scanAPIKey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, storeError(err)
	}
	return key, nil
}

// GetByValue is the unscoped lookup behind public validation and metering.
// Possession of the full secret is the authorization here.
func (s *APIKeyService) GetByValue(ctx context.Context, keyValue string) (*models.APIKey, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys
		WHERE key_value = $1
	`, keyValue)

	key, err := scanAPIKey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyInvalid
	}
	if err != nil {
		return nil, storeError(err)
	}
	return key, nil
}

func (s *APIKeyService) Update(ctx context.Context, id, userID uuid.UUID, params UpdateAPIKeyParams) (*models.APIKey, error) {
	permissions := params.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	row := s.db.Pool.QueryRow(ctx, `
		UPDATE api_keys
		SET name = $1, description = $2, permissions = $3
		WHERE id = $4 AND user_id = $5
		RETURNING `+apiKeyColumns+`
	`, params.Name, params.Description, permissions, id, userID)

	key, err := scanAPIKey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, storeError(err)
	}
	return key, nil
}

func (s *APIKeyService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM api_keys WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return storeError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// IncrementUsage bumps usage_count and stamps last_used_at in one statement.
// The database is the authority for the counter; callers never read-modify-write.
func (s *APIKeyService) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE api_keys
		SET usage_count = usage_count + 1, last_used_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return storeError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// ReserveUsage atomically claims one unit of quota. It returns false when the
// key is already at its rate limit, which makes concurrent over-admission
// impossible: at most rate_limit reservations ever succeed for a key.
func (s *APIKeyService) ReserveUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE api_keys
		SET usage_count = usage_count + 1, last_used_at = NOW()
		WHERE id = $1 AND usage_count < rate_limit
	`, id)
	if err != nil {
		return false, storeError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanAPIKey(row pgx.Row) (*models.APIKey, error) {
	var k models.APIKey
	err := row.Scan(
		&k.ID, &k.UserID, &k.Name, &k.Description, &k.Type, &k.KeyValue,
		&k.KeyPrefix, &k.Permissions, &k.UsageCount, &k.RateLimit,
		&k.LastUsedAt, &k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func storeError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
