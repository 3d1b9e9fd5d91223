// Package storage selects and opens the todo store configured for the
// process. Both the server and the todoctl CLI open their store here.
package storage

import (
	"context"
	"fmt"

	"github.com/jsamuelsen11/todo-service/internal/adapters/storage/migrate"
	"github.com/jsamuelsen11/todo-service/internal/adapters/storage/postgres"
	"github.com/jsamuelsen11/todo-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen11/todo-service/internal/platform/config"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

// Backend is an open todo store together with its lifecycle operations.
type Backend interface {
	ports.TodoRepository

	Ping(ctx context.Context) error
	Migrator() (*migrate.Migrator, error)
	Close() error
}

// Compile-time checks.
var (
	_ Backend = (*postgres.Store)(nil)
	_ Backend = (*sqlite.Store)(nil)
)

// System returns the OpenTelemetry db.system value for a configured driver.
func System(driver string) string {
	if driver == config.DriverPostgres {
		return "postgresql"
	}
	return driver
}

// Open connects to the store selected by cfg.Driver and verifies the
// connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, postgres.Config{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// MigrateUp applies all pending migrations and returns how many ran.
func MigrateUp(ctx context.Context, b Backend) (int, error) {
	m, err := b.Migrator()
	if err != nil {
		return 0, fmt.Errorf("creating migrator: %w", err)
	}
	return m.Up(ctx)
}
