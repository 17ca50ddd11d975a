package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Supported storage drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Supported tracking policies
const (
	PolicyPerScope = "per_scope"
	PolicyPerUser  = "per_user"
)

// Config holds all configuration options for the task tracker
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Tracking    TrackingConfig    `mapstructure:"tracking"`
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Application ApplicationConfig `mapstructure:"application"`
	Display     DisplayConfig     `mapstructure:"display"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver" env:"TT_DB_DRIVER"`
	Dir            string        `mapstructure:"dir" env:"TT_DB_DIR"`
	Filename       string        `mapstructure:"filename" env:"TT_DB_FILENAME"`
	DSN            string        `mapstructure:"dsn" env:"TT_DB_DSN"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" env:"TT_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" env:"TT_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `mapstructure:"dir_permissions" env:"TT_DB_DIR_PERMISSIONS"`
}

// TrackingConfig holds the timer policy and realtime view settings
type TrackingConfig struct {
	Policy        string        `mapstructure:"policy" env:"TT_TRACKING_POLICY"`
	DefaultUser   string        `mapstructure:"default_user" env:"TT_USER"`
	BreakInterval time.Duration `mapstructure:"break_interval" env:"TT_BREAK_INTERVAL"`
	TickInterval  time.Duration `mapstructure:"tick_interval" env:"TT_TICK_INTERVAL"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" env:"TT_SERVER_ADDR"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" env:"TT_SERVER_SHUTDOWN_TIMEOUT"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"TT_LOG_LEVEL"`
	Format string `mapstructure:"format" env:"TT_LOG_FORMAT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"timeout" env:"TT_APP_TIMEOUT"`
	Verbose bool          `mapstructure:"verbose" env:"TT_APP_VERBOSE"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TimeFormat string `mapstructure:"time_format" env:"TT_TIME_DISPLAY_FORMAT"`
	ListFormat string `mapstructure:"list_format" env:"TT_LIST_DEFAULT_FORMAT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".tt")

	return &Config{
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Dir:            defaultDBDir,
			Filename:       "tt.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Tracking: TrackingConfig{
			Policy:        PolicyPerScope,
			BreakInterval: 30 * time.Minute,
			TickInterval:  time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
		Display: DisplayConfig{
			TimeFormat: "2006-01-02 15:04:05",
			ListFormat: "table",
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if driver := os.Getenv("TT_DB_DRIVER"); driver != "" {
		c.Database.Driver = strings.ToLower(driver)
	}
	if dir := os.Getenv("TT_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TT_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if dsn := os.Getenv("TT_DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if timeout := os.Getenv("TT_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if timeout := os.Getenv("TT_DB_WRITE_TIMEOUT"); timeout != "" {
		c.Database.WriteTimeout = ParseDurationWithFallback(timeout, c.Database.WriteTimeout)
	}
	if perms := os.Getenv("TT_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Tracking configuration
	if policy := os.Getenv("TT_TRACKING_POLICY"); policy != "" {
		c.Tracking.Policy = strings.ToLower(policy)
	}
	if user := os.Getenv("TT_USER"); user != "" {
		c.Tracking.DefaultUser = user
	}
	if interval := os.Getenv("TT_BREAK_INTERVAL"); interval != "" {
		c.Tracking.BreakInterval = ParseDurationWithFallback(interval, c.Tracking.BreakInterval)
	}
	if interval := os.Getenv("TT_TICK_INTERVAL"); interval != "" {
		c.Tracking.TickInterval = ParseDurationWithFallback(interval, c.Tracking.TickInterval)
	}

	// Server configuration
	if addr := os.Getenv("TT_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if timeout := os.Getenv("TT_SERVER_SHUTDOWN_TIMEOUT"); timeout != "" {
		c.Server.ShutdownTimeout = ParseDurationWithFallback(timeout, c.Server.ShutdownTimeout)
	}

	// Logging configuration
	if level := os.Getenv("TT_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv("TT_LOG_FORMAT"); format != "" {
		c.Logging.Format = strings.ToLower(format)
	}

	// Application configuration
	if timeout := os.Getenv("TT_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TT_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	// Display configuration
	if format := os.Getenv("TT_TIME_DISPLAY_FORMAT"); format != "" {
		c.Display.TimeFormat = format
	}
	if format := os.Getenv("TT_LIST_DEFAULT_FORMAT"); format != "" {
		c.Display.ListFormat = strings.ToLower(format)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	case DriverMySQL:
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "a DSN is required for the mysql driver"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: "driver must be sqlite or mysql"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	// Validate tracking configuration
	if c.Tracking.Policy != PolicyPerScope && c.Tracking.Policy != PolicyPerUser {
		return &ConfigError{Field: "tracking.policy", Message: "policy must be per_scope or per_user"}
	}
	if c.Tracking.BreakInterval < time.Minute {
		return &ConfigError{Field: "tracking.break_interval", Message: "break interval must be at least 1m"}
	}
	if c.Tracking.TickInterval < time.Second {
		return &ConfigError{Field: "tracking.tick_interval", Message: "tick interval must be at least 1s"}
	}

	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}

	// Validate logging configuration
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "level must be one of debug, info, warn, error"}
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return &ConfigError{Field: "logging.format", Message: "format must be text or json"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	// Validate display configuration
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "display format cannot be empty"}
	}
	switch c.Display.ListFormat {
	case "table", "json", "yaml":
	default:
		return &ConfigError{Field: "display.list_format", Message: "list format must be table, json or yaml"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
