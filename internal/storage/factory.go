package storage

import (
	"context"
	"fmt"

	"github.com/yourname/sleepdiary/internal"
	"github.com/yourname/sleepdiary/internal/config"
)

// New opens the backend selected by cfg with its schema migrated.
func New(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case config.BackendPostgres:
		return NewPostgresRepository(ctx, cfg.DBDSN, logger)
	case config.BackendSQLite:
		return NewSQLiteStorage(ctx, cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
	}
}

func NewPostgresRepository(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	if err := MigratePostgres(dsn); err != nil {
		logger.Errorf("failed to migrate postgres: %v", err)
		return nil, err
	}
	return NewPostgresStorage(ctx, dsn, logger)
}
