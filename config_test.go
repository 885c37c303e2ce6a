package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CXZ_EDITOR", "")
	os.Unsetenv("CXZ_EDITOR")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "database.db"), cfg.Database)
	assert.Equal(t, "nano", cfg.Editor)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CXZ_EDITOR", "")
	os.Unsetenv("CXZ_EDITOR")

	content := "editor: vim\nlog_level: debug\ndatabase: " + filepath.Join(dir, "other.db") + "\n"
	require.NoError(t, os.WriteFile(ConfigPath(dir), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "vim", cfg.Editor)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "other.db"), cfg.Database)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(ConfigPath(dir), []byte("editor: vim\n"), 0o644))
	t.Setenv("CXZ_EDITOR", "code")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "code", cfg.Editor)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CXZ_LOG_LEVEL", "")
	os.Unsetenv("CXZ_LOG_LEVEL")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CXZ_LOG_LEVEL=error\n"), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CXZ_LOG_LEVEL", "")
	os.Unsetenv("CXZ_LOG_LEVEL")

	require.NoError(t, os.WriteFile(ConfigPath(dir), []byte("log_level: loud\n"), 0o644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown log level "loud"`)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path cannot be empty")
	assert.Contains(t, err.Error(), "data directory cannot be empty")
	assert.Contains(t, err.Error(), "editor cannot be empty")

	assert.NoError(t, DefaultConfig(t.TempDir()).Validate())
}

func TestEnsureDirs(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "nested", "clockz"))
	require.NoError(t, cfg.EnsureDirs())

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
