package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	filePath string
}

// NewLoader creates a new configuration loader. The config file defaults
// to TT_CONFIG, then ~/.tt/config.yaml.
func NewLoader() *Loader {
	return &Loader{
		config:   NewConfig(),
		filePath: DefaultConfigPath(),
	}
}

// WithFile points the loader at an explicit config file.
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// DefaultConfigPath returns the config file location used when none is given.
func DefaultConfigPath() string {
	if path := os.Getenv("TT_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tt", "config.yaml")
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file, when present
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadFile(); err != nil {
		return nil, err
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		overrides.Apply(config)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFile merges the YAML file over the defaults. A missing file is not an error.
func (l *Loader) loadFile() error {
	if l.filePath == "" {
		return nil
	}
	if _, err := os.Stat(l.filePath); os.IsNotExist(err) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(l.filePath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", l.filePath, err)
	}
	if err := v.Unmarshal(l.config); err != nil {
		return fmt.Errorf("decode config file %s: %w", l.filePath, err)
	}
	return nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	DBDriver       *string
	DBDir          *string
	DBFilename     *string
	DBDSN          *string
	DBQueryTimeout *time.Duration

	Policy        *string
	User          *string
	BreakInterval *time.Duration

	ServerAddr *string

	LogLevel  *string
	LogFormat *string

	Timeout *time.Duration
	Verbose *bool

	ListFormat *string
}

// Apply copies every set override onto config
func (o *ConfigOverrides) Apply(config *Config) {
	if o.DBDriver != nil {
		config.Database.Driver = *o.DBDriver
	}
	if o.DBDir != nil {
		config.Database.Dir = *o.DBDir
	}
	if o.DBFilename != nil {
		config.Database.Filename = *o.DBFilename
	}
	if o.DBDSN != nil {
		config.Database.DSN = *o.DBDSN
	}
	if o.DBQueryTimeout != nil {
		config.Database.QueryTimeout = *o.DBQueryTimeout
	}

	if o.Policy != nil {
		config.Tracking.Policy = *o.Policy
	}
	if o.User != nil {
		config.Tracking.DefaultUser = *o.User
	}
	if o.BreakInterval != nil {
		config.Tracking.BreakInterval = *o.BreakInterval
	}

	if o.ServerAddr != nil {
		config.Server.Addr = *o.ServerAddr
	}

	if o.LogLevel != nil {
		config.Logging.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		config.Logging.Format = *o.LogFormat
	}

	if o.Timeout != nil {
		config.Application.Timeout = *o.Timeout
	}
	if o.Verbose != nil {
		config.Application.Verbose = *o.Verbose
		if *o.Verbose {
			config.Logging.Level = "debug"
		}
	}

	if o.ListFormat != nil {
		config.Display.ListFormat = *o.ListFormat
	}
}
