package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "https://eodhd.com/api", config.Clients.EODHD.BaseURL)
	assert.Equal(t, "gemini-2.0-flash", config.Clients.Gemini.Model)
	assert.Equal(t, 2, config.Clients.Gemini.Retries)
	assert.Equal(t, 5, config.Reports.NewsDigest)
	assert.Equal(t, 90, config.Reports.WindowDays)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig("does-not-exist.toml")
	require.NoError(t, err)
	assert.Equal(t, "development", config.Environment)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vantage.toml")
	content := `
environment = "production"

[clients.gemini]
model = "gemini-2.5-pro"
retries = 3

[reports]
output_dir = "out"
news_digest = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.True(t, config.IsProduction())
	assert.Equal(t, "gemini-2.5-pro", config.Clients.Gemini.Model)
	assert.Equal(t, 3, config.Clients.Gemini.Retries)
	assert.Equal(t, "out", config.Reports.OutputDir)
	assert.Equal(t, 3, config.Reports.NewsDigest)
	// Untouched values keep their defaults
	assert.Equal(t, 8080, config.Server.Port)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VANTAGE_ENV", "staging")
	t.Setenv("VANTAGE_PORT", "9090")
	t.Setenv("VANTAGE_GEMINI_MODEL", "gemini-override")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "staging", config.Environment)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "gemini-override", config.Clients.Gemini.Model)
}

func TestTimeoutParsing(t *testing.T) {
	eodhd := EODHDConfig{Timeout: "15s"}
	assert.Equal(t, 15*time.Second, eodhd.GetTimeout())

	eodhd.Timeout = "bogus"
	assert.Equal(t, 30*time.Second, eodhd.GetTimeout())

	gemini := GeminiConfig{Timeout: "2m"}
	assert.Equal(t, 2*time.Minute, gemini.GetTimeout())

	gemini.Timeout = ""
	assert.Equal(t, 60*time.Second, gemini.GetTimeout())
}

func TestResolveAPIKey(t *testing.T) {
	t.Run("env wins over fallback", func(t *testing.T) {
		t.Setenv("EODHD_API_KEY", "from-env")
		key, err := ResolveAPIKey("eodhd_api_key", "from-config")
		require.NoError(t, err)
		assert.Equal(t, "from-env", key)
	})

	t.Run("fallback used when env empty", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("VANTAGE_GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")
		key, err := ResolveAPIKey("gemini_api_key", "from-config")
		require.NoError(t, err)
		assert.Equal(t, "from-config", key)
	})

	t.Run("error when nothing set", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("VANTAGE_GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")
		_, err := ResolveAPIKey("gemini_api_key", "")
		assert.Error(t, err)
	})
}
