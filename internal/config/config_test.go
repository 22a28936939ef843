package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, BackendMongo, cfg.Storage.Backend)
	assert.Equal(t, ModePolling, cfg.Telegram.Mode)
	assert.Equal(t, 2*time.Hour, cfg.Session.InactivityTimeout)
	assert.Equal(t, time.Duration(0), cfg.Session.SweepInterval)
	assert.Equal(t, 10*time.Second, cfg.Feedback.Cooldown)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.True(t, cfg.SeedOnStart)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
storage:
  backend: memory
session:
  inactivity_timeout: 90m
telegram:
  token: file-token
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 90*time.Minute, cfg.Session.InactivityTimeout)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	base := Config{
		Storage:  StorageConfig{Backend: BackendMemory},
		Telegram: TelegramConfig{Mode: ModePolling},
		Session:  SessionConfig{InactivityTimeout: time.Hour},
	}
	require.NoError(t, base.Validate())

	pg := base
	pg.Storage.Backend = BackendPostgres
	assert.ErrorContains(t, pg.Validate(), "postgres.dsn")

	hook := base
	hook.Telegram.Mode = ModeWebhook
	assert.ErrorContains(t, hook.Validate(), "webhook_url")

	bad := base
	bad.Storage.Backend = "sqlite"
	assert.ErrorContains(t, bad.Validate(), "unknown storage.backend")
}
