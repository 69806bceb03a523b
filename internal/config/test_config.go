package config

import "time"

// TestConfig returns a configuration suitable for tests: nothing touches the
// user's home directory and the reader ticks fast.
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database = DatabaseConfig{
		HistoryPath:     ":memory:",
		CachePath:       "",
		CacheMaxEntries: 10,
		Timeout:         1 * time.Second,
	}
	cfg.Catalog.UserAgent = "tankobon-test/1.0"
	cfg.Catalog.HTTPTimeout = 5 * time.Second
	cfg.Reader.TickInterval = 10 * time.Millisecond
	cfg.Reader.ImageProtocol = "halfblocks"
	cfg.Log = LogConfig{Level: "off"}
	return cfg
}
