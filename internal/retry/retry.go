package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type Config struct {
	// Delays задают паузы перед повторными попытками, всего len(Delays)+1 попыток.
	// Пустой Config означает одну попытку без повторов.
	Delays      []time.Duration
	IsRetriable func(err error) bool
}

// DBRetryConfig повторяет только ошибки соединения с Postgres (класс 08).
// Включается флагом STORAGE_RETRY, по умолчанию хранилище не повторяет запросы.
var DBRetryConfig = Config{
	Delays:      []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	IsRetriable: IsConnectionError,
}

// ClientRetryConfig повторяет сетевые ошибки HTTP-клиента.
var ClientRetryConfig = Config{
	Delays:      []time.Duration{500 * time.Millisecond, 1 * time.Second, 2 * time.Second},
	IsRetriable: IsNetworkError,
}

func IsConnectionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code)
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}

func IsNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

func DoRetry(ctx context.Context, fn func() error, configs ...Config) error {
	_, err := DoRetryWithResult(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	}, configs...)
	return err
}

func DoRetryWithResult[T any](ctx context.Context, fn func() (T, error), configs ...Config) (T, error) {
	var cfg Config
	if len(configs) > 0 {
		cfg = configs[0]
	}

	result, err := fn()
	for attempt, delay := range cfg.Delays {
		if err == nil || cfg.IsRetriable == nil || !cfg.IsRetriable(err) {
			return result, err
		}
		logger.Log.Warn("retrying after error",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			var zero T
			return zero, errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}
		result, err = fn()
	}
	return result, err
}
