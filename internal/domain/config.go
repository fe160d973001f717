package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	MCP         MCPConfig       `mapstructure:"mcp"`
	Report      ReportConfig    `mapstructure:"report"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Mode         string        `mapstructure:"mode"` // gin mode: "debug", "release", "test"
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// CacheConfig represents verdict cache configuration
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Backend     string        `mapstructure:"backend"` // "memory", "redis"
	MaxItems    int           `mapstructure:"max_items"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	RedisURL    string        `mapstructure:"redis_url"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json", "text"
	Output string `mapstructure:"output"` // "stdout", "stderr"
}

// RateLimitConfig represents per-client HTTP rate limiting
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}

// ReportConfig controls report side effects
type ReportConfig struct {
	CopyToClipboard bool `mapstructure:"copy_to_clipboard"`
}
