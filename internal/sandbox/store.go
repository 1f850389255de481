package sandbox

import (
	"context"
	"fmt"

	"github.com/julianstephens/mealplanner/internal/config"
	"github.com/julianstephens/mealplanner/internal/storage"
	"github.com/julianstephens/mealplanner/internal/storage/postgres"
	"github.com/julianstephens/mealplanner/internal/storage/sqlite"
)

// NewStore picks the postgres store for connection strings and the sqlite
// store for anything else.
func NewStore(database string) (storage.Provider, error) {
	if postgres.IsConnString(database) {
		if err := postgres.ValidateConnString(database); err != nil {
			return nil, err
		}
		return postgres.New(database), nil
	}
	return sqlite.NewStore(config.ExpandHome(database)), nil
}

// OpenStore initializes the database and seeds the recipe catalog when it
// is empty.
func OpenStore(ctx context.Context, database string) (storage.Provider, error) {
	store, err := NewStore(database)
	if err != nil {
		return nil, err
	}
	if err := store.Init(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize sandbox store: %w", err)
	}
	n, err := store.CountRecipes(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	if n == 0 {
		if _, err := Seed(ctx, store); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}
