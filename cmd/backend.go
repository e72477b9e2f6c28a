package main

import (
	"context"
	"fmt"

	"workspace-service/internal/store"
	"workspace-service/internal/store/gormstore"
	"workspace-service/internal/store/tablestore"
	"workspace-service/pkg/config"
	"workspace-service/pkg/database"

	"go.uber.org/zap"
)

// openBackend connects the document store selected by STORE_BACKEND. When migrate is
// set the backend's schema is created first.
func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger, migrate bool) (store.Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, err
		}
		log.Info("Database connection established")
		if migrate {
			if err := database.Migrate(db, log); err != nil {
				return nil, err
			}
		}
		return gormstore.New(db), nil

	case config.BackendTables:
		b, err := tablestore.New(cfg.Store.TablesConnString, cfg.Store.TablesPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create table client: %w", err)
		}
		if migrate {
			if err := b.EnsureTables(ctx); err != nil {
				return nil, err
			}
			log.Info("Tables ready", zap.String("prefix", cfg.Store.TablesPrefix))
		}
		return b, nil

	case config.BackendMemory:
		log.Warn("Using the in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
