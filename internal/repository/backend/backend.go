// Package backend opens the repository store selected by configuration.
package backend

import (
	"alcyxob/fitlog-bot/internal/config"
	"alcyxob/fitlog-bot/internal/repository"
	"alcyxob/fitlog-bot/internal/repository/memory"
	"alcyxob/fitlog-bot/internal/repository/mongo"
	"alcyxob/fitlog-bot/internal/repository/postgres"
	"context"
	"fmt"
)

// Open connects to the configured backend. The caller closes the store.
func Open(ctx context.Context, cfg config.Config) (*repository.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMongo:
		store, err := mongo.NewStore(ctx, cfg.Database.URI, cfg.Database.Name)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return store, nil
	case config.BackendPostgres:
		store, err := postgres.NewStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case config.BackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
