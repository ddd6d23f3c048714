package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate применяет встроенные SQL-миграции.
func Migrate(databaseDNS string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("unable to read migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, MigrationURL(databaseDNS))
	if err != nil {
		return fmt.Errorf("unable to init migrations: %w", err)
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Log.Info("Migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// MigrationURL переводит DSN pgx в схему драйвера golang-migrate (pgx5://).
func MigrationURL(databaseDNS string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseDNS, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseDNS, prefix)
		}
	}
	return databaseDNS
}
