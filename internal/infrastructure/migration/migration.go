// Package migration keeps the database schema in step with the persistence
// models.
package migration

import (
	"embed"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

const (
	StrategyGoose       = "goose"
	StrategyAutoMigrate = "auto"

	scriptsDir = "scripts"
)

//go:embed scripts/*.sql
var scriptsFS embed.FS

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks the strategy by name. Unknown names fall back to goose.
func NewManager(name, driver string, log logger.Interface) *Manager {
	var strategy Strategy
	switch strings.ToLower(name) {
	case StrategyAutoMigrate:
		strategy = NewGormAutoMigrateStrategy(log)
	default:
		strategy = NewGooseStrategy(driver, log)
	}
	return NewManagerWithStrategy(strategy, log)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
