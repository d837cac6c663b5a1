package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all pending migrations for the issuance audit trail.
// MySQL DSNs in go-sql-driver form are accepted and prefixed with "mysql://".
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	var migrationsPath string
	switch driver {
	case "postgres":
		migrationsPath = "file://migrations/postgresql"
	case "mysql":
		migrationsPath = "file://migrations/mysql"
		if !strings.HasPrefix(connectionString, "mysql://") {
			connectionString = "mysql://" + connectionString
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}

	logger.Info("running database migrations", slog.String("driver", driver))

	m, err := migrate.New(migrationsPath, connectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
