// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
	Match    MatchConfig    `mapstructure:"match"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds HTTP server settings. RequestTimeout bounds the compute
// path of a single query; on expiry the caller gets TIMEOUT, never partials.
type ServerConfig struct {
	Address        string `mapstructure:"address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"`   // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

func (s ServerConfig) RequestDeadline() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Millisecond
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SearchConfig holds settings for the recipe search index.
type SearchConfig struct {
	IndexName    string `mapstructure:"index_name"`
	MaxPageSize  int    `mapstructure:"max_page_size"`
	SynonymsPath string `mapstructure:"synonyms_path"`
	// StalenessTarget is the bound on index lag behind the primary store,
	// in seconds. The reconciliation tool uses it when reporting drift.
	StalenessTarget int `mapstructure:"staleness_target"`
}

// MatchConfig holds settings for the availability match engine.
type MatchConfig struct {
	MinScoreThreshold       float64 `mapstructure:"min_score_threshold"`
	MaxIngredientsPerRecipe int     `mapstructure:"max_ingredients_per_recipe"`
}

// CacheConfig holds settings for the Redis result cache.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"` // seconds
	// SnapshotRefresh is the interval for reloading the ingredient
	// reference snapshot, in seconds.
	SnapshotRefresh int `mapstructure:"snapshot_refresh"`
}

func (c CacheConfig) EntryTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// RetryConfig holds settings for retrying idempotent index/store calls.
type RetryConfig struct {
	MaxAttempts    int     `mapstructure:"max_attempts"`
	InitialBackoff int     `mapstructure:"initial_backoff"` // milliseconds
	MaxBackoff     int     `mapstructure:"max_backoff"`     // milliseconds
	Multiplier     float64 `mapstructure:"multiplier"`
	BreakerEnabled bool    `mapstructure:"breaker_enabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func validateConfig(cfg *Config) error {
	if cfg.Match.MinScoreThreshold <= 0 || cfg.Match.MinScoreThreshold > 1 {
		return fmt.Errorf("match.min_score_threshold must be in (0, 1], got %v", cfg.Match.MinScoreThreshold)
	}
	if cfg.Search.MaxPageSize < 1 {
		return fmt.Errorf("search.max_page_size must be at least 1, got %d", cfg.Search.MaxPageSize)
	}
	if cfg.Search.IndexName == "" {
		return fmt.Errorf("search.index_name is required")
	}
	if cfg.Server.RequestTimeout < 1 {
		return fmt.Errorf("server.request_timeout must be positive, got %d", cfg.Server.RequestTimeout)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "recipe-engine"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 400
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 5000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10000
	}
	if cfg.Search.IndexName == "" {
		cfg.Search.IndexName = "recipes"
	}
	if cfg.Search.MaxPageSize == 0 {
		cfg.Search.MaxPageSize = 100
	}
	if cfg.Search.SynonymsPath == "" {
		cfg.Search.SynonymsPath = "configs/ingredient-synonyms.json"
	}
	if cfg.Search.StalenessTarget == 0 {
		cfg.Search.StalenessTarget = 30
	}
	if cfg.Match.MinScoreThreshold == 0 {
		cfg.Match.MinScoreThreshold = 0.5
	}
	if cfg.Match.MaxIngredientsPerRecipe == 0 {
		cfg.Match.MaxIngredientsPerRecipe = 64
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 3600
	}
	if cfg.Cache.SnapshotRefresh == 0 {
		cfg.Cache.SnapshotRefresh = 300
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialBackoff == 0 {
		cfg.Retry.InitialBackoff = 100
	}
	if cfg.Retry.MaxBackoff == 0 {
		cfg.Retry.MaxBackoff = 2000
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = 2.0
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
