package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/strahinja/dandi-api/internal/database"
	"github.com/strahinja/dandi-api/internal/keygen"
	"github.com/strahinja/dandi-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "github",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, name, avatar_url, provider, provider_id, last_sign_in, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Provider, &user.ProviderID, &user.LastSignIn, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithProvider sets the user's OAuth provider
func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = providerID
	}
}

// CreateAPIKey creates a test api key owned by the given user
func (f *Fixtures) CreateAPIKey(t *testing.T, owner *models.User, opts ...APIKeyOption) *models.APIKey {
	t.Helper()
	f.counter++

	value := keygen.Generate(keygen.DefaultType)
	key := &models.APIKey{
		UserID:      owner.ID,
		Name:        fmt.Sprintf("Test Key %d", f.counter),
		Type:        keygen.DefaultType,
		KeyValue:    value,
		KeyPrefix:   keygen.PrefixOf(value),
		Permissions: []string{},
		RateLimit:   100,
	}

	for _, opt := range opts {
		opt(key)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO api_keys (user_id, name, description, type, key_value, key_prefix, permissions, usage_count, rate_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, key.UserID, key.Name, key.Description, key.Type, key.KeyValue, key.KeyPrefix,
		key.Permissions, key.UsageCount, key.RateLimit).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create api key: %v", err)
	}

	return key
}

// APIKeyOption configures a test api key
type APIKeyOption func(*models.APIKey)

// WithKeyName sets the key's name
func WithKeyName(name string) APIKeyOption {
	return func(k *models.APIKey) {
		k.Name = name
	}
}

// WithKeyType sets the key's type; the key value is regenerated to match
func WithKeyType(keyType string) APIKeyOption {
	return func(k *models.APIKey) {
		k.Type = keyType
		k.KeyValue = keygen.Generate(keyType)
		k.KeyPrefix = keygen.PrefixOf(k.KeyValue)
	}
}

// WithRateLimit sets the key's quota
func WithRateLimit(limit int) APIKeyOption {
	return func(k *models.APIKey) {
		k.RateLimit = limit
	}
}

// WithUsageCount sets the key's current usage
func WithUsageCount(count int) APIKeyOption {
	return func(k *models.APIKey) {
		k.UsageCount = count
	}
}

// WithPermissions sets the key's permissions
func WithPermissions(perms ...string) APIKeyOption {
	return func(k *models.APIKey) {
		k.Permissions = perms
	}
}

// WithOwner reassigns the key to a different user
func WithOwner(userID uuid.UUID) APIKeyOption {
	return func(k *models.APIKey) {
		k.UserID = userID
	}
}
