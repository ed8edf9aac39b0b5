package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/frankincense-labs/cx-management/internal/infrastructure/database"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/models"
	"github.com/frankincense-labs/cx-management/internal/shared/config"
	"github.com/frankincense-labs/cx-management/internal/shared/testutil"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestGooseStrategy_UpAndDown(t *testing.T) {
	db := openMemoryDB(t)
	s := NewGooseStrategy(database.DriverSQLite, testutil.NewMockLogger())

	require.NoError(t, s.Migrate(db))

	version, err := s.GetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(20260301000003), version)

	m := db.Migrator()
	for _, table := range []string{"profiles", "credentials", "feedback", "tickets", "ticket_replies"} {
		assert.True(t, m.HasTable(table), table)
	}
	assert.True(t, m.HasIndex(&models.TicketModel{}, "idx_tickets_number"))
	assert.True(t, m.HasIndex(&models.CredentialModel{}, "idx_credentials_method_email"))

	// Running again is a no-op.
	require.NoError(t, s.Migrate(db))

	require.NoError(t, s.MigrateDown(db, 1))
	assert.False(t, m.HasTable("tickets"))
	assert.False(t, m.HasTable("ticket_replies"))
	assert.True(t, m.HasTable("feedback"))

	version, err = s.GetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(20260301000002), version)
}

func TestGormAutoMigrateStrategy(t *testing.T) {
	db := openMemoryDB(t)
	log := testutil.NewMockLogger()
	manager := NewManager(StrategyAutoMigrate, database.DriverSQLite, log)

	assert.Equal(t, "gorm_auto_migrate", manager.GetStrategy().GetName())
	require.NoError(t, manager.Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.FeedbackModel{}))
	assert.True(t, db.Migrator().HasTable(&models.TicketReplyModel{}))
}

func TestNewManager_DefaultsToGoose(t *testing.T) {
	manager := NewManager("", database.DriverMySQL, testutil.NewMockLogger())
	assert.Equal(t, "goose", manager.GetStrategy().GetName())
}

func TestCreateScript(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, CreateScript(dir, "add_ticket_tags"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_add_ticket_tags.sql"))

	body, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
}
