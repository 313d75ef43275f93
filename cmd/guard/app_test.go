package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FINNHUB_API_KEY", "SQLITE_PATH", "POSITIONS_FILE", "QUOTE_PROVIDER", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(k, "")
	}
}

func TestNewApp_FileBackend(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, `
store:
  file: `+filepath.Join(dir, "positions.json")+`
  timezone: UTC
logger:
  level: error
`)
	a, err := newApp(path)
	require.NoError(t, err)
	defer a.Close()

	positions, err := a.checker.Positions(context.Background())
	require.NoError(t, err)
	assert.Len(t, positions, 6)
	assert.Equal(t, "file", a.backend.Name())
	assert.Equal(t, "", a.credential(""))
	assert.Equal(t, "override", a.credential("override"))
}

func TestNewApp_SQLiteYahoo(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, `
data_source:
  provider: yahoo
store:
  backend: sqlite
  sqlite_path: `+filepath.Join(dir, "guard.db")+`
logger:
  level: error
  encoding: json
`)
	a, err := newApp(path)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "sqlite", a.backend.Name())
	assert.NotEmpty(t, a.credential(""))
}

func TestNewApp_InvalidConfig(t *testing.T) {
	_, err := newApp(writeConfig(t, "risk:\n  hard_limit: -1\n"))
	require.Error(t, err)
}
