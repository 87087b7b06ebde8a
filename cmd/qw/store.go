package main

import (
	"fmt"

	"github.com/alfredjeanlab/quotewidget/internal/config"
	"github.com/alfredjeanlab/quotewidget/internal/store"
	"github.com/alfredjeanlab/quotewidget/internal/store/memory"
	"github.com/alfredjeanlab/quotewidget/internal/store/postgres"
	"github.com/alfredjeanlab/quotewidget/internal/store/sqlite"
)

// openStore opens the preference store selected by QW_STORE.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		s, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreSQLite:
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// loadConfig reads .env (when present) and then the environment.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	return config.Load()
}
