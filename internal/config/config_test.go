package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.BackendURL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout.Std())
	require.Equal(t, "miniapp.db", cfg.CachePath)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	body := "backendUrl: https://laboratory-back.example.com\nassetUrl: https://laboratory-front.example.com\nrequestTimeout: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("APP_ASSET_URL", "https://cdn.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://laboratory-back.example.com", cfg.BackendURL)
	require.Equal(t, "https://cdn.example.com", cfg.AssetURL)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout.Std())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
