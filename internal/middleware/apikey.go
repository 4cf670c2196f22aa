package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/strahinja/dandi-api/internal/models"
	"github.com/strahinja/dandi-api/internal/services"
)

const (
	APIKeyHeader = "x-api-key"
	apiKeyCtxKey = "api_key"
	meterTimeout = 10 * time.Second
)

// KeyAuthorizer admits one metered use of a raw API key.
type KeyAuthorizer interface {
	AuthorizeAndMeter(ctx context.Context, rawValue string) (*models.APIKey, error)
}

// APIKeyAuth authenticates and meters requests by x-api-key header. The
// admitted key is stored in the request context for handlers downstream.
func APIKeyAuth(authorizer KeyAuthorizer) drift.HandlerFunc {
	return func(c *drift.Context) {
		rawKey := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if rawKey == "" {
			c.BadRequest("missing x-api-key header")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), meterTimeout)
		defer cancel()

		key, err := authorizer.AuthorizeAndMeter(ctx, rawKey)
		if err != nil {
			writeKeyError(c, err)
			return
		}

		remaining := key.RateLimit - key.UsageCount
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header().Set("X-RateLimit-Limit", strconv.Itoa(key.RateLimit))
		c.Response.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Set(apiKeyCtxKey, key)
		c.Next()
	}
}

func writeKeyError(c *drift.Context, err error) {
	var quotaErr *services.QuotaExceededError
	switch {
	case errors.Is(err, services.ErrKeyMissing):
		c.BadRequest("missing api key")
	case errors.Is(err, services.ErrKeyInvalid):
		c.Unauthorized("invalid api key")
	case errors.As(err, &quotaErr):
		c.Response.Header().Set("X-RateLimit-Limit", strconv.Itoa(quotaErr.Limit))
		c.Response.Header().Set("X-RateLimit-Remaining", "0")
		_ = c.JSON(429, map[string]string{
			"error": fmt.Sprintf("Rate limit exceeded. You have used %d/%d requests.", quotaErr.Usage, quotaErr.Limit),
		})
	default:
		c.InternalServerError("failed to validate api key")
	}
}

// GetAPIKey returns the admitted key stored by APIKeyAuth, or nil.
func GetAPIKey(c *drift.Context) *models.APIKey {
	if v, ok := c.Get(apiKeyCtxKey); ok {
		if key, ok := v.(*models.APIKey); ok {
			return key
		}
	}
	return nil
}
