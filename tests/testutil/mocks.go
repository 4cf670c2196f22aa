package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/strahinja/dandi-api/internal/github"
	"github.com/strahinja/dandi-api/internal/llm"
	"github.com/strahinja/dandi-api/internal/models"
	"github.com/strahinja/dandi-api/internal/oauth"
	"github.com/strahinja/dandi-api/internal/services"
	"github.com/strahinja/dandi-api/pkg/dto"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error) {
	args := m.Called(userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockKeyService mocks the KeyService facade
type MockKeyService struct {
	mock.Mock
}

func (m *MockKeyService) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]dto.APIKeyDisplay, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.APIKeyDisplay), args.Error(1)
}

func (m *MockKeyService) Create(ctx context.Context, ownerID uuid.UUID, params services.CreateAPIKeyParams) (*dto.APIKeyDisplay, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.APIKeyDisplay), args.Error(1)
}

func (m *MockKeyService) Update(ctx context.Context, ownerID, id uuid.UUID, params services.UpdateAPIKeyParams) (*dto.APIKeyDisplay, error) {
	args := m.Called(ctx, ownerID, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.APIKeyDisplay), args.Error(1)
}

func (m *MockKeyService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockKeyService) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (*dto.APIKeyDisplay, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.APIKeyDisplay), args.Error(1)
}

func (m *MockKeyService) ValidatePublic(ctx context.Context, rawValue string) (*dto.APIKeyDisplay, error) {
	args := m.Called(ctx, rawValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.APIKeyDisplay), args.Error(1)
}

func (m *MockKeyService) ValidateInfo(ctx context.Context, rawValue string) (*dto.APIKeyInfo, error) {
	args := m.Called(ctx, rawValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.APIKeyInfo), args.Error(1)
}

func (m *MockKeyService) RecordUse(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockKeyAuthorizer mocks the metered key admission used by the middleware
type MockKeyAuthorizer struct {
	mock.Mock
}

func (m *MockKeyAuthorizer) AuthorizeAndMeter(ctx context.Context, rawValue string) (*models.APIKey, error) {
	args := m.Called(ctx, rawValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

// MockReadmeFetcher mocks the GitHub readme client
type MockReadmeFetcher struct {
	mock.Mock
}

func (m *MockReadmeFetcher) GetReadme(ctx context.Context, githubURL string) (*github.Readme, error) {
	args := m.Called(ctx, githubURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Readme), args.Error(1)
}

// MockSummarizer mocks the LLM summarizer
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, readme string) (*llm.Summary, error) {
	args := m.Called(ctx, readme)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Summary), args.Error(1)
}

// MockOAuthProvider mocks an OAuth provider
type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) GetConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}

func (m *MockOAuthProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
