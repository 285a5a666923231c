package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stockledger/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add aisle index", "add_aisle_index"},
		{"Add-Aisle-Index", "add_aisle_index"},
		{"add__aisle__index", "add_aisle_index"},
		{"Transfers 2", "transfers_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestNextVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"000001_init.up.sql":      {},
		"000001_init.down.sql":    {},
		"000007_holds.up.sql":     {},
		"000007_holds.down.sql":   {},
		"README.md":               {},
		"000003_audits.up.sql":    {},
		"000003_audits.down.sql":  {},
		"000010_orders.down.sql":  {},
		"subdir/000099_x.up.sql":  {},
		"000004_legacy.up.sql.gz": {},
	}
	next, err := NextVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), next)

	_, err = NextVersion(fstest.MapFS{"abc_bad.up.sql": {}})
	assert.Error(t, err)
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add aisle index", "Index aisle lookups")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_aisle_index.up.sql"), first.UpPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add aisle index")
	assert.Contains(t, string(up), "-- Index aisle lookups")

	second, err := CreateMigration(dir, "drop legacy column", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	names, err := ListMigrations(os.DirFS(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_add_aisle_index", "000002_drop_legacy_column"}, names)

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for i, name := range names {
		down, err := fs.ReadFile(migrations.FS, name+".down.sql")
		require.NoError(t, err, "missing down migration for %s", name)
		assert.Contains(t, string(down), "DROP TABLE")
		prefix, _, _ := strings.Cut(name, "_")
		assert.Len(t, prefix, 6, name)
		if i > 0 {
			assert.Less(t, names[i-1], name)
		}
	}

	next, err := NextVersion(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(names)+1), next)
}
