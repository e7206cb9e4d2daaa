package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "storefront", cfg.DBName)
	assert.Equal(t, BrokerKafka, cfg.EventBroker)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DB_NAME", "shop")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("EVENT_BROKER", "RabbitMQ")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CHECKOUT_TIMEOUT", "2500ms")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, "shop", cfg.DBName)
	assert.Equal(t, 7, cfg.DBMaxOpenConns)
	assert.Equal(t, BrokerRabbitMQ, cfg.EventBroker)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2500*time.Millisecond, cfg.CheckoutTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadConfig_SecretFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt_secret")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_SECRET_FILE", path)

	assert.Equal(t, "from-file", LoadConfig().JWTSecret)

	t.Setenv("JWT_SECRET_FILE", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, "from-env", LoadConfig().JWTSecret)
}
