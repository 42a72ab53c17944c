package core

import (
	"context"
	"fmt"

	"ripperdoc/internal/infra/persistence/memory"
	"ripperdoc/internal/infra/persistence/postgres"
	"ripperdoc/internal/infra/persistence/sqlite"
	"ripperdoc/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

type (
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)

// StorageConfig selects and configures a backend. An empty driver means sqlite.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// OpenPersistentStore opens the backend named by cfg. A nil engine gets the
// default commit rules.
func OpenPersistentStore(ctx context.Context, cfg StorageConfig, engine *RulesEngine) (PersistentStore, error) {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, engine)
	case StoragePostgres:
		if cfg.PostgresDSN == "" {
			return nil, domain.NewError(domain.CodeConfigurationError, "postgres driver requires a dsn")
		}
		return postgres.Open(ctx, cfg.PostgresDSN, engine)
	default:
		return nil, domain.NewError(domain.CodeConfigurationError, fmt.Sprintf("unknown storage driver %q", driver))
	}
}
