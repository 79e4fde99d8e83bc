package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates an up and down pair", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "Add Invoice Index")
		require.NoError(t, err)

		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)
		assert.Contains(t, mf.UpPath, "add_invoice_index.up.sql")
		assert.Contains(t, mf.DownPath, "add_invoice_index.down.sql")

		content, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(content), "-- Migration: Add Invoice Index"))
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("returns distinct base names sorted", func(t *testing.T) {
		dir := t.TempDir()

		for _, name := range []string{
			"000002_second.up.sql", "000002_second.down.sql",
			"000001_first.up.sql", "000001_first.down.sql",
			"notes.txt",
		} {
			require.NoError(t, os.WriteFile(dir+"/"+name, []byte("-- sql"), 0o644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_first", "000002_second"}, migrations)
	})

	t.Run("returns empty slice for missing directory", func(t *testing.T) {
		migrations, err := ListMigrations("/nonexistent/path")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Add Invoice Index", "add_invoice_index"},
		{"already_safe", "already_safe"},
		{"Mixed-Case Name ", "mixed_case_name"},
		{"special!@#chars", "specialchars"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}
