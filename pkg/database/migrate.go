package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/fleetops/fleet-manager/pkg/config"
)

// RunMigrations applies all pending schema migrations. A no-op when the
// migrations path is not configured.
func RunMigrations(cfg *config.DatabaseConfig) error {
	if cfg.MigrationsPath == "" {
		return nil
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", cfg.MigrationsPath), cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
