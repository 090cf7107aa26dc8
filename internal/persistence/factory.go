package persistence

import (
	"context"
	"fmt"

	"shiftpay/internal/config"
	"shiftpay/internal/repository/sqlite"
)

// developmentDBPath is used instead of the configured location while developing
const developmentDBPath = "shiftpay-dev.db"

// Factory creates Persistence instances based on environment
type Factory struct {
	env config.Environment
}

// NewFactory creates a new persistence factory for the given environment
func NewFactory(env config.Environment) *Factory {
	return &Factory{env: env}
}

// Create builds the Persistence for the current environment. Production
// honours storage.driver; development and testing ignore it.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (Persistence, error) {
	switch f.env {
	case config.Development:
		return f.createDevelopment(cfg)
	case config.Testing:
		return f.createTesting()
	default:
		return f.createProduction(ctx, cfg)
	}
}

// createDevelopment uses a SQLite file in the working directory
func (f *Factory) createDevelopment(cfg *config.Config) (Persistence, error) {
	repo, err := sqlite.New(developmentDBPath, sqlite.Options{QueryTimeout: cfg.GetQueryTimeout()})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize development database: %w", err)
	}
	return NewSQLite(repo), nil
}

// createTesting uses an in-memory SQLite database
func (f *Factory) createTesting() (Persistence, error) {
	repo, err := config.CreateTestRepository()
	if err != nil {
		return nil, err
	}
	return NewSQLite(repo), nil
}

func (f *Factory) createProduction(ctx context.Context, cfg *config.Config) (Persistence, error) {
	if cfg.Storage.Driver == config.DriverSQLite {
		repo, err := config.CreateRepository(cfg)
		if err != nil {
			return nil, err
		}
		return NewSQLite(repo), nil
	}

	store, err := config.CreateKVStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewDocuments(store), nil
}
