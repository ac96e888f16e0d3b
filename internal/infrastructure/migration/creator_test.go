package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create bills table", "create_bills_table"},
		{"Add-Cashier-Shifts", "add_cashier_shifts"},
		{"ADD_PAYMENT_INDEX", "add_payment_index"},
		{"add__kitchen__tickets", "add_kitchen_tickets"},
		{"Add Refunds 2026", "add_refunds_2026"},
		{"   spaces   ", "spaces"},
		{"drop!@#$column", "dropcolumn"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add bill item modifiers", "Modifier columns for bill items")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// version is a 14-digit timestamp so files sort chronologically
	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))
	assert.Equal(t,
		strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql"),
		strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add bill item modifiers")
	assert.Contains(t, string(up), "Modifier columns for bill items")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "db", "migrations")

	mf, err := CreateMigration(nested, "seed stations", "Initial kitchen stations")
	require.NoError(t, err)
	require.NotNil(t, mf)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000001_create_bills.up.sql",
		"000001_create_bills.down.sql",
		"000002_create_payments.up.sql",
		"000002_create_payments.down.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- sql"), 0644))
	}

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_bills", "000002_create_payments"}, migrations)
}

func TestListMigrations_MissingDirectoryIsEmpty(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "never-created"))

	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_SkipsStrays(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000001_create_bills.up.sql",
		"000001_create_bills.down.sql",
		"README.md",
		".gitkeep",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644))
	}
	// a directory with a migration-shaped name must not be listed
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_bills"}, migrations)
}
