// Package persistencetest opens throwaway SQLite databases carrying the
// ledger schema for repository and service tests.
package persistencetest

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/stockledger/backend/internal/infrastructure/migration"
	"github.com/stockledger/backend/migrations"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN is an in-memory database with foreign key enforcement switched on
const DSN = "file::memory:?_foreign_keys=on"

// sqliteTypes maps Postgres-only column types onto ones the sqlite driver
// scans back into Go values. go-sqlite3 only parses TIMESTAMP, DATETIME and
// DATE columns as time.Time.
var sqliteTypes = strings.NewReplacer("TIMESTAMPTZ", "TIMESTAMP")

// NewSQLiteDB opens an in-memory database and applies the versioned
// migrations to it, so tests see the same keys, checks and delete rules as
// production. The pool is capped at one connection so all callers see the
// same database; concurrent transactions therefore run one after another.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(DSN), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	require.NoError(t, err)
	m, err := migration.NewWithDriver(SQLiteMigrations(t), "sqlite3", driver, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

// SQLiteMigrations returns the embedded migrations rewritten for sqlite
func SQLiteMigrations(t testing.TB) fs.FS {
	t.Helper()

	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)
	out := fstest.MapFS{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		body, err := fs.ReadFile(migrations.FS, e.Name())
		require.NoError(t, err)
		out[e.Name()] = &fstest.MapFile{Data: []byte(sqliteTypes.Replace(string(body)))}
	}
	return out
}
