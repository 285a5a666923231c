package persistencetest

import (
	"io/fs"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDB_AppliesMigrations(t *testing.T) {
	db := NewSQLiteDB(t)

	var version int64
	require.NoError(t, db.Raw("SELECT version FROM schema_migrations").Scan(&version).Error)
	assert.Positive(t, version)

	var foreignKeys int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&foreignKeys).Error)
	assert.Equal(t, 1, foreignKeys)
}

func TestNewSQLiteDB_EnforcesForeignKeys(t *testing.T) {
	db := NewSQLiteDB(t)
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	err := db.Exec(
		"INSERT INTO commitments (id, created_at, updated_at, stock_item_id, quantity) VALUES (?, ?, ?, ?, 1)",
		uuid.NewString(), now, now, uuid.NewString(),
	).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOREIGN KEY")
}

func TestNewSQLiteDB_TimestampsRoundTrip(t *testing.T) {
	db := NewSQLiteDB(t)
	created := time.Date(2026, 5, 4, 10, 30, 15, 0, time.UTC)

	store, err := inventory.NewStore("Parramatta", "PAR", inventory.DesignationStore, "", created)
	require.NoError(t, err)
	require.NoError(t, db.Create(store).Error)

	var loaded inventory.Store
	require.NoError(t, db.First(&loaded, "id = ?", store.ID).Error)
	assert.True(t, created.Equal(loaded.CreatedAt), "got %s", loaded.CreatedAt)
	assert.True(t, loaded.IsActive)
}

func TestSQLiteMigrations(t *testing.T) {
	fsys := SQLiteMigrations(t)

	ups, err := fs.Glob(fsys, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	for _, name := range ups {
		body, err := fs.ReadFile(fsys, name)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "TIMESTAMPTZ", name)
		assert.Contains(t, string(body), "TIMESTAMP", name)
	}
}
