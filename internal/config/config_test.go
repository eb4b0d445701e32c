package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_SQLiteWithDefaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
tokens:
  secret: file-secret
storage:
  driver: sqlite
sqlite:
  path: /tmp/finance.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "file-secret", cfg.Tokens.Secret)
	assert.Equal(t, 24*time.Hour, cfg.Tokens.ShortTTL)
	assert.Equal(t, 720*time.Hour, cfg.Tokens.LongTTL)
	assert.Equal(t, 10, cfg.Tokens.BcryptCost)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/finance.db", cfg.SQLite.Path)
	assert.Equal(t, "localhost:4000", cfg.HTTPServer.Address)
	assert.Equal(t, []string{"*"}, cfg.HTTPServer.CORSOrigins)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoad_EnvOverridesSecret(t *testing.T) {
	path := writeConfig(t, `
tokens:
  secret: file-secret
storage:
  driver: sqlite
`)
	t.Setenv("TOKEN_SECRET", "env-secret")
	t.Setenv("TOKEN_PREVIOUS_SECRETS", "old-1,old-2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Tokens.Secret)
	assert.Equal(t, []string{"old-1", "old-2"}, cfg.Tokens.PreviousSecrets)
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: sqlite
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Tokens:   Tokens{Secret: "s", ShortTTL: time.Hour, LongTTL: 2 * time.Hour},
			Storage:  Storage{Driver: DriverPostgres},
			Postgres: Postgres{User: "finance", DBName: "finance"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid postgres", mutate: func(c *Config) {}},
		{name: "postgres without user", mutate: func(c *Config) { c.Postgres.User = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mysql" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Driver = DriverSQLite }, wantErr: true},
		{name: "long shorter than short", mutate: func(c *Config) { c.Tokens.LongTTL = time.Minute }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
