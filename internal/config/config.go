package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pders01/tankobon/internal/validation"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Reader   ReaderConfig   `mapstructure:"reader"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	HistoryPath     string        `mapstructure:"history_path"`
	CachePath       string        `mapstructure:"cache_path"`
	CacheMaxEntries int           `mapstructure:"cache_max_entries"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type CatalogConfig struct {
	APIBaseURL   string        `mapstructure:"api_base_url"`
	CoverBaseURL string        `mapstructure:"cover_base_url"`
	UserAgent    string        `mapstructure:"user_agent"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	Language     string        `mapstructure:"language"`
}

type ReaderConfig struct {
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	PrefetchWindow   int           `mapstructure:"prefetch_window"`
	LowFidelityPages int           `mapstructure:"low_fidelity_pages"`
	ImageProtocol    string        `mapstructure:"image_protocol"`
}

type UIConfig struct {
	Colors      UIColors          `mapstructure:"colors"`
	Description DescriptionConfig `mapstructure:"description"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type DescriptionConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

// KeyBindings are plain keys; Search is combined with Modifier.
type KeyBindings struct {
	Quit        string `mapstructure:"quit"`
	Search      string `mapstructure:"search"`
	Back        string `mapstructure:"back"`
	NextPage    string `mapstructure:"next_page"`
	PrevPage    string `mapstructure:"prev_page"`
	NextResults string `mapstructure:"next_results"`
	PrevResults string `mapstructure:"prev_results"`
	ToggleOrder string `mapstructure:"toggle_order"`
	Language    string `mapstructure:"language"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

var imageProtocols = []string{"auto", "halfblocks", "kitty"}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".tankobon")

	return &Config{
		Database: DatabaseConfig{
			HistoryPath:     filepath.Join(dataDir, "history.db"),
			CachePath:       filepath.Join(dataDir, "pages.bolt"),
			CacheMaxEntries: 2000,
			Timeout:         1 * time.Second,
		},
		Catalog: CatalogConfig{
			APIBaseURL:   "https://api.mangadex.org",
			CoverBaseURL: "https://uploads.mangadex.org/covers",
			UserAgent:    "tankobon/1.0 (terminal manga reader)",
			HTTPTimeout:  20 * time.Second,
			Language:     "en",
		},
		Reader: ReaderConfig{
			TickInterval:     250 * time.Millisecond,
			PrefetchWindow:   3,
			LowFidelityPages: 5,
			ImageProtocol:    "auto",
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Description: DescriptionConfig{
				WordWrapMaxWidth: 100,
				WordWrapMinWidth: 30,
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:        "q",
				Search:      "s",
				Back:        "esc",
				NextPage:    "right",
				PrevPage:    "left",
				NextResults: "]",
				PrevResults: "[",
				ToggleOrder: "o",
				Language:    "l",
			},
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(dataDir, "tankobon.log"),
		},
	}
}

// sections flattens cfg into the dotted keys viper understands. Durations
// are written as strings so saved files stay readable.
func sections(cfg *Config) map[string]map[string]any {
	c := cfg.UI.Colors
	b := cfg.Keys.Bindings
	return map[string]map[string]any{
		"database": {
			"history_path":      cfg.Database.HistoryPath,
			"cache_path":        cfg.Database.CachePath,
			"cache_max_entries": cfg.Database.CacheMaxEntries,
			"timeout":           cfg.Database.Timeout.String(),
		},
		"catalog": {
			"api_base_url":   cfg.Catalog.APIBaseURL,
			"cover_base_url": cfg.Catalog.CoverBaseURL,
			"user_agent":     cfg.Catalog.UserAgent,
			"http_timeout":   cfg.Catalog.HTTPTimeout.String(),
			"language":       cfg.Catalog.Language,
		},
		"reader": {
			"tick_interval":      cfg.Reader.TickInterval.String(),
			"prefetch_window":    cfg.Reader.PrefetchWindow,
			"low_fidelity_pages": cfg.Reader.LowFidelityPages,
			"image_protocol":     cfg.Reader.ImageProtocol,
		},
		"ui.colors": {
			"primary":   c.Primary,
			"secondary": c.Secondary,
			"accent":    c.Accent,
			"text":      c.Text,
			"muted":     c.Muted,
			"error":     c.Error,
			"success":   c.Success,
		},
		"ui.description": {
			"word_wrap_max_width": cfg.UI.Description.WordWrapMaxWidth,
			"word_wrap_min_width": cfg.UI.Description.WordWrapMinWidth,
		},
		"keys": {
			"modifier": cfg.Keys.Modifier,
		},
		"keys.bindings": {
			"quit":         b.Quit,
			"search":       b.Search,
			"back":         b.Back,
			"next_page":    b.NextPage,
			"prev_page":    b.PrevPage,
			"next_results": b.NextResults,
			"prev_results": b.PrevResults,
			"toggle_order": b.ToggleOrder,
			"language":     b.Language,
		},
		"log": {
			"level": cfg.Log.Level,
			"path":  cfg.Log.Path,
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for section, values := range sections(defaultConfig()) {
		for key, value := range values {
			v.SetDefault(section+"."+key, value)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TANKOBON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.NormalizePaths(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// Validate rejects settings the reader cannot run with.
func (c *Config) Validate() error {
	endpoints := validation.NewEndpointValidator()
	if _, err := endpoints.ValidateAndNormalize(c.Catalog.APIBaseURL); err != nil {
		return fmt.Errorf("catalog.api_base_url: %w", err)
	}
	if _, err := endpoints.ValidateAndNormalize(c.Catalog.CoverBaseURL); err != nil {
		return fmt.Errorf("catalog.cover_base_url: %w", err)
	}
	if c.Reader.TickInterval < 10*time.Millisecond {
		return fmt.Errorf("reader.tick_interval must be at least 10ms: %s", c.Reader.TickInterval)
	}
	if c.Reader.PrefetchWindow < 0 || c.Reader.PrefetchWindow > 10 {
		return fmt.Errorf("reader.prefetch_window must be between 0 and 10: %d", c.Reader.PrefetchWindow)
	}
	if c.Reader.LowFidelityPages < 0 {
		return fmt.Errorf("reader.low_fidelity_pages must not be negative: %d", c.Reader.LowFidelityPages)
	}
	protocol := strings.ToLower(c.Reader.ImageProtocol)
	for _, p := range imageProtocols {
		if protocol == p {
			return nil
		}
	}
	return fmt.Errorf("reader.image_protocol must be one of %s: %q", strings.Join(imageProtocols, ", "), c.Reader.ImageProtocol)
}

// ConfigDir is ~/.config/tankobon.
func ConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "tankobon")
}

// NormalizePaths expands and checks every file path in c. An empty cache
// path disables the page cache.
func (c *Config) NormalizePaths() error {
	files := validation.NewFilePathValidator()
	for name, p := range map[string]*string{
		"database.history_path": &c.Database.HistoryPath,
		"database.cache_path":   &c.Database.CachePath,
		"log.path":              &c.Log.Path,
	} {
		normalized, err := files.ValidateFile(*p)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*p = normalized
	}
	return nil
}

func Save(config *Config, path string) error {
	v := viper.New()

	for section, values := range sections(config) {
		for key, value := range values {
			v.Set(section+"."+key, value)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
