package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every configuration variable so each test starts from the
// documented defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET", "SERVICE_KEY",
		"HEARTBEAT_INTERVAL_SECONDS", "SEND_QUEUE_SIZE", "NODE_ID",
		"REDIS_ADDR", "RELAY_CHANNEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.ServiceKey)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 256, cfg.SendQueueSize)
	assert.NotEmpty(t, cfg.NodeID)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "venturehub.relay", cfg.RelayChannel)
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "not-a-number")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("PORT", "80")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresSecretsOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "prod-secret")
	_, err = LoadConfig()
	require.Error(t, err)

	t.Setenv("SERVICE_KEY", "prod-service-key")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
	assert.Equal(t, "prod-service-key", cfg.ServiceKey)
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com ,,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsBadHeartbeat(t *testing.T) {
	clearEnv(t)

	t.Setenv("HEARTBEAT_INTERVAL_SECONDS", "0")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("HEARTBEAT_INTERVAL_SECONDS", "soon")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigHubSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEARTBEAT_INTERVAL_SECONDS", "5")
	t.Setenv("SEND_QUEUE_SIZE", "64")
	t.Setenv("NODE_ID", "node-7")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RELAY_CHANNEL", "hub.events")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 64, cfg.SendQueueSize)
	assert.Equal(t, "node-7", cfg.NodeID)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "hub.events", cfg.RelayChannel)
}
