package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "JWT", cfg.API.AuthScheme)
	require.Equal(t, "file", cfg.Storage.Backend)
	require.Equal(t, "slotlist", cfg.Storage.Namespace)
	require.Equal(t, time.Duration(0), cfg.API.Timeout)
	require.Equal(t, time.Hour, cfg.Mock.TokenTTL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("API_TIMEOUT", "5s")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	require.Equal(t, "redis", cfg.Storage.Backend)
	require.Equal(t, "cache:6379", cfg.Redis.RedisAddress())
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webclient.yaml")
	require.NoError(t, os.WriteFile(path, []byte("API_BASE_URL: http://files.example\nSTORAGE_BACKEND: memory\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "http://files.example", cfg.API.BaseURL)
	require.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestRedisAddress_Unconfigured(t *testing.T) {
	require.Equal(t, "", RedisConfig{Port: "6379"}.RedisAddress())
}
