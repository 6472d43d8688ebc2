package quota

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weddingseo/contentproxy/internal/operation"
)

func TestDefaultProfiles(t *testing.T) {
	p := DefaultProfiles()

	assert.Equal(t, Profile{Daily: 20, Hourly: 5, Credits: 1}, p.For(operation.TitleOptimization))
	assert.Equal(t, Profile{Daily: 10, Hourly: 3, Credits: 3}, p.For(operation.OutlineGeneration))
	assert.Equal(t, Profile{Daily: 100, Hourly: 20, Credits: 1}, p.For(operation.General))
	assert.Equal(t, p.For(operation.General), p.For(operation.Type("foo")))

	_, err := NewProfiles(defaultTable())
	assert.NoError(t, err)
}

func TestNewProfiles_Validation(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		table := defaultTable()
		delete(table, operation.General)
		_, err := NewProfiles(table)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "general: missing profile")
	})

	t.Run("non-positive values", func(t *testing.T) {
		table := defaultTable()
		table[operation.TextImprovement] = Profile{Daily: 0, Hourly: 1, Credits: 1}
		table[operation.ContentGeneration] = Profile{Daily: 1, Hourly: 1, Credits: -1}
		_, err := NewProfiles(table)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "text-improvement")
		assert.Contains(t, err.Error(), "content-generation")
	})

	t.Run("unknown type", func(t *testing.T) {
		table := defaultTable()
		table["seo-audit"] = Profile{Daily: 1, Hourly: 1, Credits: 1}
		_, err := NewProfiles(table)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seo-audit: unknown operation type")
	})

	t.Run("input is copied", func(t *testing.T) {
		table := defaultTable()
		p, err := NewProfiles(table)
		require.NoError(t, err)
		table[operation.General] = Profile{Daily: 1, Hourly: 1, Credits: 1}
		assert.Equal(t, 100, p.For(operation.General).Daily)
	})
}

func TestLoadProfiles(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		p, err := LoadProfiles("")
		require.NoError(t, err)
		assert.Equal(t, DefaultProfiles(), p)
	})

	t.Run("overlay keeps unspecified defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "limits.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
title-optimization:
  daily: 40
  hourly: 8
  credits: 2
`), 0o600))

		p, err := LoadProfiles(path)
		require.NoError(t, err)
		assert.Equal(t, Profile{Daily: 40, Hourly: 8, Credits: 2}, p.For(operation.TitleOptimization))
		assert.Equal(t, Profile{Daily: 50, Hourly: 10, Credits: 2}, p.For(operation.ContentGeneration))
	})

	t.Run("invalid overlay", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "limits.yaml")
		require.NoError(t, os.WriteFile(path, []byte("general:\n  daily: 0\n  hourly: 1\n  credits: 1\n"), 0o600))

		_, err := LoadProfiles(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "general")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
