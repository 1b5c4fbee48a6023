package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 200, cfg.Outbox.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.Audit.Interval)
	assert.Equal(t, 10*time.Second, cfg.Kafka.WriteTimeout)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
mode: prod
server:
  addr: ":9090"
database:
  driver: postgres
  dsn: "host=db user=fandom dbname=fandom sslmode=disable"
kafka:
  brokers: ["k1:9092"]
  write_timeout: 3s
audit:
  interval: 1m
  batch_size: 50
`)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	t.Setenv("FANDOM_SERVER_ADDR", ":7070")
	t.Setenv("FANDOM_KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Mode)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Second, cfg.Kafka.WriteTimeout)
	assert.Equal(t, time.Minute, cfg.Audit.Interval)
	assert.Equal(t, 50, cfg.Audit.BatchSize)
	// 未覆盖的字段保持默认值
	assert.Equal(t, 200, cfg.Outbox.BatchSize)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FANDOM_DB_DRIVER", "oracle")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
