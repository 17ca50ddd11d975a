package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/logging"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "tt.db", cfg.Database.Filename)
	assert.Equal(t, PolicyPerScope, cfg.Tracking.Policy)
	assert.Equal(t, 30*time.Minute, cfg.Tracking.BreakInterval)
	assert.Equal(t, time.Second, cfg.Tracking.TickInterval)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "table", cfg.Display.ListFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TT_DB_DIR", "/tmp/tt-test")
	t.Setenv("TT_DB_DRIVER", "MySQL")
	t.Setenv("TT_DB_DSN", "tt:pass@tcp(db:3306)/tt")
	t.Setenv("TT_TRACKING_POLICY", "per_user")
	t.Setenv("TT_USER", "alice")
	t.Setenv("TT_BREAK_INTERVAL", "45m")
	t.Setenv("TT_DB_QUERY_TIMEOUT", "not-a-duration")
	t.Setenv("TT_DB_DIR_PERMISSIONS", "0700")
	t.Setenv("TT_APP_VERBOSE", "true")
	t.Setenv("TT_LIST_DEFAULT_FORMAT", "YAML")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, "/tmp/tt-test", cfg.Database.Dir)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "tt:pass@tcp(db:3306)/tt", cfg.Database.DSN)
	assert.Equal(t, PolicyPerUser, cfg.Tracking.Policy)
	assert.Equal(t, "alice", cfg.Tracking.DefaultUser)
	assert.Equal(t, 45*time.Minute, cfg.Tracking.BreakInterval)
	assert.Equal(t, 10*time.Second, cfg.Database.QueryTimeout, "invalid values fall back")
	assert.Equal(t, uint32(0700), cfg.Database.DirPermissions)
	assert.True(t, cfg.Application.Verbose)
	assert.Equal(t, "yaml", cfg.Display.ListFormat)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"mysql without dsn", func(c *Config) { c.Database.Driver = DriverMySQL }, "database.dsn"},
		{"empty dir", func(c *Config) { c.Database.Dir = "" }, "database.dir"},
		{"zero query timeout", func(c *Config) { c.Database.QueryTimeout = 0 }, "database.query_timeout"},
		{"unknown policy", func(c *Config) { c.Tracking.Policy = "global" }, "tracking.policy"},
		{"short break interval", func(c *Config) { c.Tracking.BreakInterval = 30 * time.Second }, "tracking.break_interval"},
		{"fast tick", func(c *Config) { c.Tracking.TickInterval = 100 * time.Millisecond }, "tracking.tick_interval"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad list format", func(c *Config) { c.Display.ListFormat = "csv" }, "display.list_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoader_FileThenEnvironmentThenOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  dir: ` + dir + `
  filename: file.db
tracking:
  policy: per_user
  break_interval: 20m
logging:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("TT_BREAK_INTERVAL", "25m")

	addr := ":9999"
	verbose := true
	cfg, err := NewLoader().WithFile(path).LoadWithOverrides(&ConfigOverrides{
		ServerAddr: &addr,
		Verbose:    &verbose,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "file.db"), cfg.GetDatabasePath())
	assert.Equal(t, PolicyPerUser, cfg.Tracking.Policy)
	assert.Equal(t, 25*time.Minute, cfg.Tracking.BreakInterval, "environment beats file")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, time.Second, cfg.Tracking.TickInterval, "unset keys keep defaults")
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithFile(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, PolicyPerScope, cfg.Tracking.Policy)
}

func TestLoader_InvalidOverrideFails(t *testing.T) {
	policy := "everyone"
	_, err := NewLoader().WithFile("").LoadWithOverrides(&ConfigOverrides{Policy: &policy})
	require.Error(t, err)
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("TT_CONFIG", "/etc/tt.yaml")
	assert.Equal(t, "/etc/tt.yaml", DefaultConfigPath())
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		value    string
		expected Environment
	}{
		{"development", Development},
		{"testing", Testing},
		{"production", Production},
		{"", Production},
		{"staging", Production},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TT_ENV", tt.value)
			assert.Equal(t, tt.expected, GetEnvironment())
		})
	}
}

func TestStoreFactory_Open(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Dir = filepath.Join(t.TempDir(), "nested")

	store, err := NewStoreFactory(cfg).WithEnvironment(Production).Open(context.Background(), logging.Discard())
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(cfg.GetDatabasePath())
	assert.NoError(t, err, "database file should be created under the configured directory")
}

func TestStoreFactory_TestingUsesMemory(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Dir = filepath.Join(t.TempDir(), "unused")

	store, err := NewStoreFactory(cfg).WithEnvironment(Testing).Open(context.Background(), logging.Discard())
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(cfg.Database.Dir)
	assert.True(t, os.IsNotExist(err))
}
