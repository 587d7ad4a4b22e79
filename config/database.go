package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kendall-kelly/inventory-api/store"
)

var Store store.Store

// ConnectStore opens the backend selected by cfg and installs it as the
// shared store.
func ConnectStore(ctx context.Context, cfg *Config) error {
	s, err := store.New(ctx, cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("failed to connect to %s store: %w", cfg.StoreBackend, err)
	}
	Store = s

	slog.Info("store connection established", "backend", cfg.StoreBackend)
	return nil
}

// GetStore returns the store instance
func GetStore() store.Store {
	return Store
}

// SetStore sets the store instance (primarily for testing)
func SetStore(s store.Store) {
	Store = s
}
