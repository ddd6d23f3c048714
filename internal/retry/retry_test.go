package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastConfig = Config{
	Delays:      []time.Duration{time.Millisecond, time.Millisecond},
	IsRetriable: IsConnectionError,
}

func TestDoRetryWithResult_SucceedsAfterConnectionError(t *testing.T) {
	calls := 0
	result, err := DoRetryWithResult(context.Background(), func() (int, error) {
		calls++
		if calls == 1 {
			return 0, &pgconn.PgError{Code: pgerrcode.ConnectionFailure}
		}
		return 42, nil
	}, fastConfig)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 2, calls)
}

func TestDoRetryWithResult_DoesNotRetryQueryErrors(t *testing.T) {
	calls := 0
	_, err := DoRetryWithResult(context.Background(), func() (int, error) {
		calls++
		return 0, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}, fastConfig)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetry_GivesUpAfterAllDelays(t *testing.T) {
	calls := 0
	err := DoRetry(context.Background(), func() error {
		calls++
		return &pgconn.PgError{Code: pgerrcode.ConnectionDoesNotExist}
	}, fastConfig)

	assert.Error(t, err)
	assert.Equal(t, len(fastConfig.Delays)+1, calls)
}

func TestDoRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Delays: []time.Duration{time.Hour}, IsRetriable: func(error) bool { return true }}
	err := DoRetry(ctx, func() error { return errors.New("boom") }, cfg)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, IsConnectionError(&pgconn.PgError{Code: pgerrcode.ConnectionException}))
	assert.False(t, IsConnectionError(&pgconn.PgError{Code: pgerrcode.NotNullViolation}))
	assert.False(t, IsConnectionError(errors.New("plain")))
}

func TestDoRetryWithResult_EmptyConfigCallsOnce(t *testing.T) {
	calls := 0
	_, err := DoRetryWithResult(context.Background(), func() (int, error) {
		calls++
		return 0, &pgconn.PgError{Code: pgerrcode.ConnectionFailure}
	}, Config{})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
