package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ProbeInterval)
	assert.Equal(t, "London", cfg.ProbeCity)
	assert.Equal(t, "info", cfg.LogLevel)

	require.NotEmpty(t, cfg.WeatherSources)
	require.NotEmpty(t, cfg.PriceSources)
	assert.Equal(t, "openweather", cfg.WeatherSources[0].Name)
	assert.Equal(t, "nobitex", cfg.PriceSources[0].Name)

	// Descriptors without an explicit timeout inherit the default.
	for _, d := range cfg.WeatherSources {
		assert.Positive(t, d.Deadline(), d.Name)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "30s")
	t.Setenv("PROBE_CITY", "Tehran")
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Tehran", cfg.ProbeCity)
	assert.Equal(t, "ow-key", cfg.OpenWeatherAPIKey)
	assert.Empty(t, cfg.WeatherAPIKey)
}

func TestLoadSourcesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	yaml := `weather:
  - name: wttr.in
    base_url: https://wttr.in
price:
  - name: kraken
    base_url: https://api.kraken.com/0/public/Ticker
    timeout: 3
  - name: binance
    base_url: https://api.binance.com/api/v3/ticker/price
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("SOURCES_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.WeatherSources, 1)
	assert.Equal(t, "wttr.in", cfg.WeatherSources[0].Name)

	require.Len(t, cfg.PriceSources, 2)
	assert.Equal(t, "kraken", cfg.PriceSources[0].Name)
	assert.Equal(t, 3*time.Second, cfg.PriceSources[0].Deadline())
	// No explicit timeout falls back to SOURCE_TIMEOUT.
	assert.Equal(t, 8*time.Second, cfg.PriceSources[1].Deadline())
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "0s")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadBadSourcesFile(t *testing.T) {
	t.Setenv("SOURCES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}
