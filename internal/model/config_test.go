package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Service.BaseURL)
	assert.Equal(t, 30, cfg.Service.TimeoutSec)
	assert.Equal(t, 5, cfg.Inbox.PageSize)
	assert.Equal(t, "keyring", cfg.Session.Backend)
	assert.Equal(t, DefaultScopes, cfg.Auth.Scopes)
}

func TestLoadConfig_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
service:
  base_url: https://assist.example.com/
  ai_requests_per_minute: 0
inbox:
  page_size: 20
session:
  backend: sqlite
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://assist.example.com", cfg.Service.BaseURL)
	assert.Equal(t, 0, cfg.Service.AIRequestsPerMinute)
	assert.Equal(t, 20, cfg.Inbox.PageSize)
	assert.Equal(t, "sqlite", cfg.Session.Backend)
	assert.Equal(t, 30, cfg.Service.TimeoutSec)
}

func TestLoadConfig_InvalidPageSizeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inbox:\n  page_size: 7\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Inbox.PageSize)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("MAILASSIST_SERVICE_BASE_URL", "http://10.0.0.2:9000")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:9000", cfg.Service.BaseURL)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_WritesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Inbox.PageSize = 10
	cfg.Session.Backend = "memory"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.Inbox.PageSize)
	assert.Equal(t, "memory", loaded.Session.Backend)
}

func TestViewMode(t *testing.T) {
	assert.False(t, ViewPreview.IsAI())
	assert.True(t, ViewAIPreview.IsAI())
	assert.True(t, ViewAISummary.IsAI())
	assert.Equal(t, "AI summary", ViewAISummary.Label())
}

func TestValidPageLimit(t *testing.T) {
	for _, n := range []int{5, 10, 20} {
		assert.True(t, ValidPageLimit(n), n)
	}
	assert.False(t, ValidPageLimit(0))
	assert.False(t, ValidPageLimit(15))
}
