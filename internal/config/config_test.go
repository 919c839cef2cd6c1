package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2, cfg.Barrels.Count)
	assert.Equal(t, "barrel", cfg.Barrels.Prefix)
	assert.Equal(t, "barrel0", cfg.Barrels.Name(0))
	assert.Equal(t, "barrel1", cfg.Barrels.Name(1))
	assert.Equal(t, 60, cfg.Barrel.AutosaveIntervalSeconds)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "googol.yaml")

	err := os.WriteFile(path, []byte("barrels:\n  count: 5\n  prefix: node\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Barrels.Count)
	assert.Equal(t, "node", cfg.Barrels.Prefix)
	// Untouched sections keep their defaults.
	assert.Equal(t, 3000, cfg.Statistics.MonitorIntervalMS)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/googol.yaml")
	assert.Error(t, err)
}

func TestLoadOrDefault_MissingFileFallsBack(t *testing.T) {
	cfg, err := LoadOrDefault("/nonexistent/path/googol.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
