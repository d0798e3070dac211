package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
server:
  port: 9090
jwt:
  secret: file-secret
schedule:
  timezone: America/Argentina/Buenos_Aires
  board_ttl: 10m
cache:
  ttl: 30s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 10*time.Minute, cfg.Schedule.BoardTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Schedule.Location().String())

	// defaults
	assert.Equal(t, "agenda.events", cfg.Redis.Channel)
	assert.Equal(t, 5*time.Second, cfg.Schedule.LoadTimeout)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=agenda sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AGENDA_JWT_SECRET", "env-secret")
	t.Setenv("AGENDA_DB_HOST", "db.internal")
	t.Setenv("AGENDA_SERVER_PORT", "7070")

	cfg, err := LoadConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "schedule:\n  timezone: Mars/Olympus\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret is required")
	assert.Contains(t, err.Error(), "schedule.timezone")
}
