// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Paths       PathsConfig       `mapstructure:"paths"`
	Prowlarr    ProwlarrConfig    `mapstructure:"prowlarr"`
	Torznab     TorznabConfig     `mapstructure:"torznab"`
	QBittorrent QBittorrentConfig `mapstructure:"qbittorrent"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration. Path is the directory for log
// files; empty keeps logging on stdout only.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// PathsConfig holds the filesystem layout. DownloadDir is where the download
// client writes transfers, LibraryDir is the root of the media tree and
// TorrentDir caches fetched .torrent artifacts.
type PathsConfig struct {
	DownloadDir string `mapstructure:"download_dir"`
	LibraryDir  string `mapstructure:"library_dir"`
	TorrentDir  string `mapstructure:"torrent_dir"`
}

// ProwlarrConfig holds the Prowlarr aggregator connection.
type ProwlarrConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// TorznabConfig holds the generic Torznab endpoint connection. Indexers
// lists the indexer slugs to fan out over; empty means the aggregate feed.
type TorznabConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	BaseURL  string   `mapstructure:"base_url"`
	APIKey   string   `mapstructure:"api_key"`
	Indexers []string `mapstructure:"indexers"`
}

// QBittorrentConfig holds the download client connection.
type QBittorrentConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	UseSSL   bool   `mapstructure:"use_ssl"`
}

// ScoringConfig points at an optional rules file; empty keeps the built-in
// default rules.
type ScoringConfig struct {
	RulesFile string `mapstructure:"rules_file"`
}

// Default returns a Config with default values. The defaults are static, so
// a decode failure is a programming error.
func Default() *Config {
	cfg := &Config{}
	v := viper.New()
	setDefaults(v)
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("default config does not decode: %v", err))
	}
	return cfg
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.seasonarr")
	}

	v.SetEnvPrefix("SEASONARR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file, defaults + env vars apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.path", "./data/seasonarr.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")

	v.SetDefault("paths.download_dir", "./data/downloads")
	v.SetDefault("paths.library_dir", "./data/library")
	v.SetDefault("paths.torrent_dir", "./data/torrents")

	v.SetDefault("prowlarr.enabled", false)
	v.SetDefault("prowlarr.base_url", "http://localhost:9696")
	v.SetDefault("prowlarr.api_key", "")

	v.SetDefault("torznab.enabled", false)
	v.SetDefault("torznab.base_url", "")
	v.SetDefault("torznab.api_key", "")
	v.SetDefault("torznab.indexers", []string{})

	v.SetDefault("qbittorrent.host", "localhost")
	v.SetDefault("qbittorrent.port", 8085)
	v.SetDefault("qbittorrent.username", "admin")
	v.SetDefault("qbittorrent.password", "")
	v.SetDefault("qbittorrent.use_ssl", false)

	v.SetDefault("scoring.rules_file", "")
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
