package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, "cache", cfg.Cache.Dir)
	assert.Equal(t, "cloudshift:", cfg.Cache.Redis.KeyPrefix)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
cache:
  backend: redis
  redis:
    url: redis://localhost:6379
    ttl: 3600
models:
  fast:
    id: gpt-4o-mini
    description: cheap and quick
  accurate:
    id: gpt-4o
    max_tokens: 8192
default_model: fast
rate_limit:
  requests_per_minute: 30
  burst_size: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis://localhost:6379", cfg.Cache.Redis.URL)
	assert.Equal(t, 3600, cfg.Cache.Redis.TTL)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Len(t, cfg.Models, 2)
	assert.Equal(t, "fast", cfg.DefaultModel)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "cache:\n  backend: dynamodb\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsModelWithoutID(t *testing.T) {
	path := writeConfig(t, `
models:
  broken:
    description: no id
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDefaultModel(t *testing.T) {
	path := writeConfig(t, `
models:
  fast:
    id: gpt-4o-mini
default_model: missing
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_model")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestModelResolution(t *testing.T) {
	cfg := &Config{
		Models: map[string]ModelInfo{
			"fast":     {ID: "gpt-4o-mini"},
			"accurate": {ID: "gpt-4o"},
		},
		DefaultModel: "fast",
	}

	info, err := cfg.Model("")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", info.ID, "empty name resolves the default model")

	info, err = cfg.Model("accurate")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", info.ID)

	_, err = cfg.Model("nonexistent")
	assert.Error(t, err)
}

func TestModelNoDefault(t *testing.T) {
	cfg := &Config{Models: map[string]ModelInfo{"fast": {ID: "x"}}}
	_, err := cfg.Model("")
	assert.Error(t, err)
}

func TestModelNames(t *testing.T) {
	cfg := &Config{Models: map[string]ModelInfo{"a": {ID: "1"}, "b": {ID: "2"}}}
	assert.ElementsMatch(t, []string{"a", "b"}, cfg.ModelNames())
}
