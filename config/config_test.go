package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  host: localhost\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "/v1", cfg.HTTP.APIPrefix)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout())
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, time.Duration(0), cfg.Auth.TokenTTL())
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("AIRTECH_DB_PASSWORD", "s3cret")

	cfg, err := Parse([]byte("database:\n  host: db\n  user: airtech\n  password: ${AIRTECH_DB_PASSWORD}\n  name: flights\n"))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "host=db port=5432 user=airtech password=s3cret dbname=flights sslmode=disable", cfg.Database.DSN())
}

func TestParse_Validation(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "negative token ttl", yaml: "auth:\n  token_ttl_minutes: -1\n"},
		{name: "negative reminder interval", yaml: "worker:\n  reminder_interval_minutes: -5\n"},
		{name: "negative reminder dedup", yaml: "worker:\n  reminder_dedup_hours: -1\n"},
		{name: "postmark without token", yaml: "email:\n  provider: postmark\n  from: noreply@airtech.io\n"},
		{name: "unknown provider", yaml: "email:\n  provider: carrier-pigeon\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  token_ttl_minutes: 1440\nkafka:\n  brokers: [\"kafka:9092\"]\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
