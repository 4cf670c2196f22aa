package handlers

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
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// KeyServiceInterface defines the methods used by handlers from KeyService
type KeyServiceInterface interface {
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]dto.APIKeyDisplay, error)
	Create(ctx context.Context, ownerID uuid.UUID, params services.CreateAPIKeyParams) (*dto.APIKeyDisplay, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, params services.UpdateAPIKeyParams) (*dto.APIKeyDisplay, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (*dto.APIKeyDisplay, error)
	ValidatePublic(ctx context.Context, rawValue string) (*dto.APIKeyDisplay, error)
	ValidateInfo(ctx context.Context, rawValue string) (*dto.APIKeyInfo, error)
	RecordUse(ctx context.Context, id uuid.UUID) error
}

// ReadmeFetcherInterface defines the methods used by handlers from the GitHub client
type ReadmeFetcherInterface interface {
	GetReadme(ctx context.Context, githubURL string) (*github.Readme, error)
}

// SummarizerInterface defines the methods used by handlers from the LLM summarizer
type SummarizerInterface interface {
	Summarize(ctx context.Context, readme string) (*llm.Summary, error)
}
