package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/strahinja/dandi-api/internal/middleware"
	"github.com/strahinja/dandi-api/internal/services"
	"github.com/strahinja/dandi-api/pkg/dto"
)

type APIKeyHandler struct {
	keyService KeyServiceInterface
}

func NewAPIKeyHandler(keyService KeyServiceInterface) *APIKeyHandler {
	return &APIKeyHandler{keyService: keyService}
}

func (h *APIKeyHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keys, err := h.keyService.ListForOwner(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to list api keys")
		return
	}

	_ = c.JSON(200, keys)
}

func (h *APIKeyHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	key, err := h.keyService.GetForOwner(context.Background(), userID, keyID)
	if err != nil {
		if errors.Is(err, services.ErrKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to get api key")
		return
	}

	_ = c.JSON(200, key)
}

func (h *APIKeyHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}
	if req.RateLimit != nil && *req.RateLimit <= 0 {
		c.BadRequest("rateLimit must be positive")
		return
	}

	key, err := h.keyService.Create(context.Background(), userID, services.CreateAPIKeyParams{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Permissions: req.Permissions,
		RateLimit:   req.RateLimit,
	})
	if err != nil {
		c.InternalServerError("failed to create api key")
		return
	}

	_ = c.JSON(201, key)
}

func (h *APIKeyHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	var req dto.UpdateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	key, err := h.keyService.Update(context.Background(), userID, keyID, services.UpdateAPIKeyParams{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		if errors.Is(err, services.ErrKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to update api key")
		return
	}

	_ = c.JSON(200, key)
}

func (h *APIKeyHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	if err := h.keyService.Delete(context.Background(), userID, keyID); err != nil {
		if errors.Is(err, services.ErrKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to delete api key")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "api key deleted"})
}

// IncrementUsage records one use of an owned key without a quota check.
func (h *APIKeyHandler) IncrementUsage(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	ctx := context.Background()

	// scope the increment to the caller's own keys
	if _, err := h.keyService.GetForOwner(ctx, userID, keyID); err != nil {
		if errors.Is(err, services.ErrKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to get api key")
		return
	}

	if err := h.keyService.RecordUse(ctx, keyID); err != nil {
		c.InternalServerError("failed to record usage")
		return
	}

	key, err := h.keyService.GetForOwner(ctx, userID, keyID)
	if err != nil {
		c.InternalServerError("failed to get api key")
		return
	}

	_ = c.JSON(200, key)
}

// Validate resolves a raw key presented in the request body and returns the
// full display record. Authorization is possession of the key itself.
func (h *APIKeyHandler) Validate(c *drift.Context) {
	var req dto.ValidateKeyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	key, err := h.keyService.ValidatePublic(context.Background(), req.KeyValue)
	if err != nil {
		writeValidationError(c, err)
		return
	}

	_ = c.JSON(200, key)
}

// ValidateInfo reports a key's standing without echoing any key material.
func (h *APIKeyHandler) ValidateInfo(c *drift.Context) {
	var req dto.ValidateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	info, err := h.keyService.ValidateInfo(context.Background(), req.APIKey)
	if err != nil {
		if errors.Is(err, services.ErrKeyMissing) {
			c.BadRequest("apiKey is required")
			return
		}
		if errors.Is(err, services.ErrKeyInvalid) {
			_ = c.JSON(401, dto.ValidateKeyResponse{IsValid: false, Error: "invalid api key"})
			return
		}
		c.InternalServerError("failed to validate api key")
		return
	}

	_ = c.JSON(200, dto.ValidateKeyResponse{IsValid: true, KeyInfo: info})
}

func writeValidationError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrKeyMissing):
		c.BadRequest("keyValue is required")
	case errors.Is(err, services.ErrKeyInvalid):
		c.Unauthorized("invalid api key")
	default:
		c.InternalServerError("failed to validate api key")
	}
}
