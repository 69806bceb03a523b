package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, 1*time.Second, cfg.Database.Timeout)
	assert.Equal(t, 2000, cfg.Database.CacheMaxEntries)
	assert.Equal(t, "https://api.mangadex.org", cfg.Catalog.APIBaseURL)
	assert.Equal(t, 20*time.Second, cfg.Catalog.HTTPTimeout)
	assert.NotEmpty(t, cfg.Catalog.UserAgent)
	assert.Equal(t, 250*time.Millisecond, cfg.Reader.TickInterval)
	assert.Equal(t, 3, cfg.Reader.PrefetchWindow)
	assert.Equal(t, 5, cfg.Reader.LowFidelityPages)
	assert.Equal(t, "ctrl", cfg.Keys.Modifier)
	assert.Equal(t, "q", cfg.Keys.Bindings.Quit)
	assert.Equal(t, "off", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 250*time.Millisecond, cfg.Reader.TickInterval)
	assert.True(t, filepath.IsAbs(cfg.Database.HistoryPath))
}

func TestLoad_FromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test-config.toml")
	configContent := `
[database]
history_path = "/tmp/history.db"
timeout = "10s"

[catalog]
http_timeout = "45s"
user_agent = "test-agent"
language = "fr"

[reader]
prefetch_window = 5
image_protocol = "kitty"

[ui.colors]
primary = "#FF0000"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/history.db", cfg.Database.HistoryPath)
	assert.Equal(t, 10*time.Second, cfg.Database.Timeout)
	assert.Equal(t, 45*time.Second, cfg.Catalog.HTTPTimeout)
	assert.Equal(t, "test-agent", cfg.Catalog.UserAgent)
	assert.Equal(t, "fr", cfg.Catalog.Language)
	assert.Equal(t, 5, cfg.Reader.PrefetchWindow)
	assert.Equal(t, "kitty", cfg.Reader.ImageProtocol)
	assert.Equal(t, "#FF0000", cfg.UI.Colors.Primary)

	// Keys the file leaves out keep their defaults.
	assert.Equal(t, 250*time.Millisecond, cfg.Reader.TickInterval)
	assert.Equal(t, "#4ECDC4", cfg.UI.Colors.Secondary)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TANKOBON_READER_PREFETCH_WINDOW", "7")
	configPath := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Reader.PrefetchWindow)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[reader]\nimage_protocol = \"sixel\"\n"), 0o644))

	_, err := Load(configPath)
	assert.ErrorContains(t, err, "image_protocol")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad api url", func(c *Config) { c.Catalog.APIBaseURL = "ftp://x" }},
		{"bad cover url", func(c *Config) { c.Catalog.CoverBaseURL = "https://uploads.mangadex.org/covers?x=1" }},
		{"tick too fast", func(c *Config) { c.Reader.TickInterval = time.Millisecond }},
		{"prefetch too large", func(c *Config) { c.Reader.PrefetchWindow = 11 }},
		{"negative low pages", func(c *Config) { c.Reader.LowFidelityPages = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNormalizePaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := TestConfig()
	cfg.Database.CachePath = "~/pages.bolt"
	cfg.Log.Path = "/tmp/logs/../tankobon.log"
	require.NoError(t, cfg.NormalizePaths())

	assert.Equal(t, ":memory:", cfg.Database.HistoryPath)
	assert.Equal(t, filepath.Join(home, "pages.bolt"), cfg.Database.CachePath)
	assert.Equal(t, "/tmp/tankobon.log", cfg.Log.Path)

	cfg.Database.HistoryPath = t.TempDir()
	assert.ErrorContains(t, cfg.NormalizePaths(), "database.history_path")
}

func TestSave(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.HistoryPath = "/test/history.db"
	cfg.Catalog.UserAgent = "test-save-agent"
	cfg.Reader.TickInterval = 100 * time.Millisecond
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(t.TempDir(), "saved-config.toml")
	require.NoError(t, Save(cfg, savePath))

	loaded, err := Load(savePath)
	require.NoError(t, err)

	assert.Equal(t, cfg.Database.HistoryPath, loaded.Database.HistoryPath)
	assert.Equal(t, cfg.Catalog.UserAgent, loaded.Catalog.UserAgent)
	assert.Equal(t, cfg.Reader.TickInterval, loaded.Reader.TickInterval)
	assert.Equal(t, cfg.Keys.Modifier, loaded.Keys.Modifier)
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "generated.toml")
	require.NoError(t, GenerateDefaultConfig(configPath))

	_, err := os.Stat(configPath)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "ctrl", cfg.Keys.Modifier)
	assert.Equal(t, 3, cfg.Reader.PrefetchWindow)
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, ":memory:", cfg.Database.HistoryPath)
	assert.Equal(t, "tankobon-test/1.0", cfg.Catalog.UserAgent)
	assert.NoError(t, cfg.Validate())
}
