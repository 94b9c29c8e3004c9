package main

import (
	"context"
	"strings"

	"compendium/internal/config"
	"compendium/internal/store"
	"compendium/internal/store/postgres"
	"compendium/internal/store/sqlite"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	if strings.HasPrefix(cfg.Database.DSN, "postgres://") {
		return postgres.New(ctx, cfg.Database.DSN)
	}
	return sqlite.New(ctx, cfg.Database.DSN)
}
