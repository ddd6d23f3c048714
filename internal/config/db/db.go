package db

import (
	"context"
	"fmt"

	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"github.com/Bessima/botform-intake/internal/retry"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type DB struct {
	Pool PgxPoolInterface
	// Retry по умолчанию пустой: ошибка хранилища возвращается сразу.
	Retry retry.Config
}

// NewDB открывает пул соединений, проверяет его и применяет миграции.
func NewDB(ctx context.Context, databaseDNS string) (*DB, error) {
	if databaseDNS == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}

	pool, err := pgxpool.New(ctx, databaseDNS)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if err = Migrate(databaseDNS); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Log.Info("Connected to database", zap.Int32("max_conns", pool.Config().MaxConns))

	return &DB{Pool: pool}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *DB) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}
