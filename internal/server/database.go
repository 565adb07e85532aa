package server

import (
	"context"
	"fmt"

	"reelhouse/internal/core"
	"reelhouse/internal/models"
	"reelhouse/internal/store"
)

// openStore builds the catalog store selected by the config. The returned
// database is nil for the memory store.
func openStore(ctx context.Context, config *core.Config, logger *core.Logger) (store.Repository, *core.Database, error) {
	videoType := config.Features.Catalog.DefaultVideoType
	if videoType == "" {
		videoType = models.DefaultVideoType
	}

	switch config.Database.Driver {
	case core.DriverSQLite:
		db, err := core.OpenSQLite(config.Database.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		repo, err := store.NewSQLite(ctx, db, logger, store.WithDefaultVideoType(videoType))
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to prepare sqlite store: %w", err)
		}
		return repo, db, nil
	case core.DriverMemory:
		logger.Info("Using in-memory catalog store")
		return store.NewMemory(store.WithDefaultVideoType(videoType)), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", config.Database.Driver)
	}
}
