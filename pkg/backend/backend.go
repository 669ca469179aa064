// Package backend opens the storage implementation the configuration names.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/db"
	"github.com/tackroom/fairshare/pkg/memory"
	"github.com/tackroom/fairshare/pkg/mongodb"
	"github.com/tackroom/fairshare/pkg/postgres"
)

// Open builds the configured db.Database. The returned close function
// releases the underlying connections and is safe to defer.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Database, func(), error) {
	switch cfg.Database.Backend {
	case "memory":
		logger.Info("Using in-memory storage, data will not survive restarts")
		return memory.NewStore(), func() {}, nil

	case "postgres":
		logger.Info("Connecting to PostgreSQL")
		pg, err := postgres.NewDB(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres backend: %w", err)
		}
		if err := pg.RunMigrations(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return pg, pg.Close, nil

	case "mongodb":
		logger.Info("Connecting to MongoDB", zap.String("database", cfg.Database.MongoDatabase))
		mg, err := mongodb.NewDB(ctx, cfg.Database.MongoURI, cfg.Database.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open mongodb backend: %w", err)
		}
		closeFn := func() {
			if err := mg.Close(context.Background()); err != nil {
				logger.Warn("Failed to disconnect from MongoDB", zap.Error(err))
			}
		}
		return mg, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}
