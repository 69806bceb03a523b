package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/tankobon/internal/catalog"
	"github.com/pders01/tankobon/internal/config"
	"github.com/pders01/tankobon/internal/debuglog"
	"github.com/pders01/tankobon/internal/history"
	"github.com/pders01/tankobon/internal/imaging"
	"github.com/pders01/tankobon/internal/library"
	"github.com/pders01/tankobon/internal/pagecache"
	"github.com/pders01/tankobon/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	cachePath  string
	logLevel   string
	protocol   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:          "tankobon",
	Short:        "Read manga in the terminal",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tankobon %s\n", Version)
		fmt.Println("Terminal manga reader")
		fmt.Println("github.com/pders01/tankobon")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration to ~/.config/tankobon/config.toml",
	Run: func(cmd *cobra.Command, args []string) {
		configFile := filepath.Join(config.ConfigDir(), "config.toml")
		if err := config.GenerateDefaultConfig(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "Path to configuration file")
	flags.StringVar(&dbPath, "db", "", "Path to reading history database (overrides config)")
	flags.StringVar(&cachePath, "cache", "", "Path to page cache file (overrides config, \"off\" disables)")
	flags.StringVar(&logLevel, "log-level", "", "Debug log level: off, error, warn, info, debug")
	flags.StringVar(&protocol, "protocol", "", "Image protocol: auto, halfblocks, kitty")
	flags.BoolVar(&quiet, "quiet", false, "Skip startup banner")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyOverrides(cfg); err != nil {
		return err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer debuglog.Close()

	proto, err := imaging.ParseProtocol(cfg.Reader.ImageProtocol)
	if err != nil {
		return err
	}

	if !quiet {
		tui.ShowBanner(Version)
	}

	store, err := history.Open(ctx, cfg.Database.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: reading history disabled: %v\n", err)
	}
	defer store.Close()

	opts := catalog.Options{
		APIBaseURL:   cfg.Catalog.APIBaseURL,
		CoverBaseURL: cfg.Catalog.CoverBaseURL,
		UserAgent:    cfg.Catalog.UserAgent,
		Timeout:      cfg.Catalog.HTTPTimeout,
	}
	if cfg.Database.CachePath != "" {
		cache, err := pagecache.Open(cfg.Database.CachePath, cfg.Database.CacheMaxEntries, cfg.Database.Timeout)
		if err != nil {
			debuglog.Warnf("page cache disabled: %v", err)
		} else {
			defer cache.Close()
			opts.Cache = cache
		}
	}
	client, err := catalog.NewClient(opts)
	if err != nil {
		return err
	}

	lib, err := library.New()
	if err != nil {
		return fmt.Errorf("open library index: %w", err)
	}
	defer lib.Close()

	tui.ApplyTheme(cfg.UI.Colors)
	app := tui.NewApp(tui.Options{
		Config:   cfg,
		Catalog:  client,
		History:  store,
		Library:  lib,
		Protocol: proto,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// applyOverrides folds command line flags over the loaded config.
func applyOverrides(cfg *config.Config) error {
	if dbPath != "" {
		cfg.Database.HistoryPath = dbPath
	}
	switch cachePath {
	case "":
	case "off":
		cfg.Database.CachePath = ""
	default:
		cfg.Database.CachePath = cachePath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if protocol != "" {
		cfg.Reader.ImageProtocol = protocol
	}
	if err := cfg.NormalizePaths(); err != nil {
		return fmt.Errorf("invalid flag: %w", err)
	}
	return cfg.Validate()
}
