package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/querykit/pkg/database"
)

// unsetenv clears key for the test and restores it afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "DB_DRIVER", "DB_DSN", "DB_MAX_QPS", "DB_DEBUG", "LOG_LEVEL", "LOG_FORMAT", "REDIS_ENABLED", "QUERY_LOG_KEY"} {
		unsetenv(t, key)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Zero(t, cfg.DB.MaxQPS)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, database.DefaultQueryLogKey, cfg.Redis.QueryLogKey)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/app")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("DB_CONN_MAX_LIFETIME", "60")
	t.Setenv("DB_MAX_QPS", "12.5")
	t.Setenv("DB_DEBUG", "true")
	t.Setenv("REDIS_ENABLED", "1")
	t.Setenv("REDIS_PORT", "not-a-number")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 50, cfg.DB.MaxOpenConns)
	assert.Equal(t, time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, 12.5, cfg.DB.MaxQPS)
	assert.True(t, cfg.DB.Debug)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	dbCfg := cfg.Database()
	assert.Equal(t, "postgres", dbCfg.Driver)
	assert.Equal(t, "postgres://localhost/app", dbCfg.DSN)
	assert.Equal(t, 12.5, dbCfg.MaxQPS)
	assert.True(t, dbCfg.Debug)
}

func TestLoad_EnvFile(t *testing.T) {
	unsetenv(t, "DB_DRIVER")
	unsetenv(t, "QUERY_LOG_KEY")
	t.Setenv("LOG_LEVEL", "WARN")

	path := filepath.Join(t.TempDir(), ".env")
	content := "DB_DRIVER=mysql\nQUERY_LOG_KEY=app:queries\nLOG_LEVEL=ERROR\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "app:queries", cfg.Redis.QueryLogKey)
	// existing variables win over the file
	assert.Equal(t, "WARN", cfg.Log.Level)
}

func TestLoad_InvalidEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER=\"mysql\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.DB.Driver = "sqlite"
		c.Log.Level = "INFO"
		c.Log.Format = "text"
		return c
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"driver":     func(c *Config) { c.DB.Driver = "oracle" },
		"max qps":    func(c *Config) { c.DB.MaxQPS = -1 },
		"log level":  func(c *Config) { c.Log.Level = "TRACE" },
		"log format": func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestRedisConfig(t *testing.T) {
	c := &Config{}
	c.Redis.Host = "cache"
	c.Redis.Port = 6380
	c.Redis.Password = "secret"
	c.Redis.DB = 3

	rc := c.RedisConfig()
	assert.Equal(t, "cache", rc.Host)
	assert.Equal(t, 6380, rc.Port)
	assert.Equal(t, "secret", rc.Password)
	assert.Equal(t, 3, rc.DB)
}
