package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
scraper:
  workers: "4"
  fetcher: browser
  timeout: 10s
macys:
  limit: 50
cache:
  addr: localhost:6379
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "4", cfg.Scraper.Workers)
	assert.Equal(t, "browser", cfg.Scraper.Fetcher)
	assert.Equal(t, 10*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 50, cfg.Macys.Limit)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)

	// untouched keys keep their defaults
	assert.Equal(t, "https://www.macys.com/xapi/digital/v1/product", cfg.Macys.APIURL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "products.db", cfg.Database.Path)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Scraper.Fetcher)
	assert.Equal(t, "auto", cfg.Scraper.Workers)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/override.db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(writeConfig(t, "database:\n  path: file.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"unknown fetcher", "scraper:\n  fetcher: carrier-pigeon\n"},
		{"zero timeout", "scraper:\n  timeout: 0s\n"},
		{"negative limit", "macys:\n  limit: -1\n"},
		{"malformed yaml", "scraper: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}
