package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Store.Host)
	assert.Equal(t, 5434, cfg.Store.Port)
	assert.Equal(t, "nyc_complaints", cfg.Store.Database)
	assert.Equal(t, "postgres", cfg.Store.User)
	assert.Equal(t, 100, cfg.Import.BatchSize)
	assert.Equal(t, "./data", cfg.Import.DataDir)
	assert.Equal(t, "https://data.cityofnewyork.us/resource/erm2-nwe9.csv", cfg.Download.BaseURL)
	assert.Equal(t, 300, cfg.Download.TimeoutSecs)
	assert.Equal(t, 2, cfg.Download.Concurrency)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  host: db.internal
  port: 5432
  database: complaints
import:
  batch_size: 500
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Store.Host)
	assert.Equal(t, 5432, cfg.Store.Port)
	assert.Equal(t, "complaints", cfg.Store.Database)
	assert.Equal(t, 500, cfg.Import.BatchSize)
	// Unset values fall back to defaults.
	assert.Equal(t, "postgres", cfg.Store.User)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("NYC311_STORE_HOST", "env-host")
	t.Setenv("NYC311_STORE_PASSWORD", "sekret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Store.Host)
	assert.Equal(t, "sekret", cfg.Store.Password)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	assert.Error(t, err)
}
