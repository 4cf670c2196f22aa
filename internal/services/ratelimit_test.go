package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/strahinja/dandi-api/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimiter(t *testing.T) (*RateLimiter, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	store := NewAPIKeyService(db, 100)
	validator := NewAPIKeyValidator(store)
	return NewRateLimiter(validator, store), mock
}

func expectKeyLookup(mock pgxmock.PgxPoolIface, keyID uuid.UUID, value string, usage, limit int) {
	rows := pgxmock.NewRows(apiKeyTestColumns).
		AddRow(keyID, uuid.New(), "my key", "", "dev", value, "dandi-dev-", []string{}, usage, limit, nil, time.Now())
	mock.ExpectQuery(`SELECT .+ FROM api_keys WHERE key_value`).
		WithArgs(value).
		WillReturnRows(rows)
}

func TestRateLimiter_CheckAndReserve_Admits(t *testing.T) {
	limiter, mock := setupRateLimiter(t)
	keyID := uuid.New()
	value := "dandi-dev-abcdefghijklmnopqrstuvwxyz12"

	expectKeyLookup(mock, keyID, value, 4, 10)
	mock.ExpectExec(`UPDATE api_keys`).
		WithArgs(keyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	key, err := limiter.CheckAndReserve(context.Background(), value)

	require.NoError(t, err)
	// the returned record reflects the committed reservation
	assert.Equal(t, 5, key.UsageCount)
	assert.Equal(t, 10, key.RateLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_CheckAndReserve_Exhausted(t *testing.T) {
	limiter, mock := setupRateLimiter(t)
	keyID := uuid.New()
	value := "dandi-dev-abcdefghijklmnopqrstuvwxyz12"

	expectKeyLookup(mock, keyID, value, 10, 10)

	key, err := limiter.CheckAndReserve(context.Background(), value)

	assert.Nil(t, key)

	var quotaErr *QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, 10, quotaErr.Usage)
	assert.Equal(t, 10, quotaErr.Limit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_CheckAndReserve_LostRace(t *testing.T) {
	limiter, mock := setupRateLimiter(t)
	keyID := uuid.New()
	value := "dandi-dev-abcdefghijklmnopqrstuvwxyz12"

	// quota looks available at read time
	expectKeyLookup(mock, keyID, value, 9, 10)

	// but the conditional increment finds it gone
	mock.ExpectExec(`UPDATE api_keys`).
		WithArgs(keyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	// re-read for the accurate count
	rows := pgxmock.NewRows(apiKeyTestColumns).
		AddRow(keyID, uuid.New(), "my key", "", "dev", value, "dandi-dev-", []string{}, 10, 10, nil, time.Now())
	mock.ExpectQuery(`SELECT .+ FROM api_keys WHERE id`).
		WithArgs(keyID).
		WillReturnRows(rows)

	key, err := limiter.CheckAndReserve(context.Background(), value)

	assert.Nil(t, key)

	var quotaErr *QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, 10, quotaErr.Usage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_CheckAndReserve_MissingKey(t *testing.T) {
	limiter, mock := setupRateLimiter(t)

	key, err := limiter.CheckAndReserve(context.Background(), "")

	assert.ErrorIs(t, err, ErrKeyMissing)
	assert.Nil(t, key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_Info(t *testing.T) {
	limiter, mock := setupRateLimiter(t)
	keyID := uuid.New()
	value := "dandi-dev-abcdefghijklmnopqrstuvwxyz12"

	expectKeyLookup(mock, keyID, value, 7, 10)

	info, err := limiter.Info(context.Background(), value)

	require.NoError(t, err)
	assert.Equal(t, 7, info.Usage)
	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 3, info.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_Info_OverLimitClampsRemaining(t *testing.T) {
	limiter, mock := setupRateLimiter(t)
	keyID := uuid.New()
	value := "dandi-dev-abcdefghijklmnopqrstuvwxyz12"

	expectKeyLookup(mock, keyID, value, 12, 10)

	info, err := limiter.Info(context.Background(), value)

	require.NoError(t, err)
	assert.Equal(t, 0, info.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_RecordUse(t *testing.T) {
	limiter, mock := setupRateLimiter(t)
	keyID := uuid.New()

	mock.ExpectExec(`UPDATE api_keys`).
		WithArgs(keyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := limiter.RecordUse(context.Background(), keyID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
