package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5433")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("APP_ENV", "test")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
		t.Setenv("BUY_NOW_TTL", "10m")
		t.Setenv("LOW_STOCK_THRESHOLD", "3")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5433", cfg.DBPort)
		assert.Equal(t, "9090", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, 10*time.Minute, cfg.BuyNowTTL)
		assert.Equal(t, 3, cfg.LowStockThreshold)
	})

	t.Run("Defaults", func(t *testing.T) {
		setRequired(t)
		t.Setenv("APP_PORT", "")
		t.Setenv("KAFKA_BROKERS", "")
		t.Setenv("JWT_TTL", "")
		t.Setenv("BUY_NOW_TTL", "")
		t.Setenv("LOW_STOCK_THRESHOLD", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
		assert.Equal(t, 15*time.Minute, cfg.BuyNowTTL)
		assert.Equal(t, 5, cfg.LowStockThreshold)
		assert.Empty(t, cfg.KafkaBrokers)
		assert.Equal(t, "product-updates", cfg.KafkaProductTopic)
	})

	t.Run("Missing DB host", func(t *testing.T) {
		t.Setenv("DB_HOST", "")
		t.Setenv("JWT_SECRET", "secret")

		_, err := Load()
		assert.EqualError(t, err, "DB_HOST is not set")
	})

	t.Run("Missing JWT secret", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.EqualError(t, err, "JWT_SECRET is not set")
	})

	t.Run("Invalid duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CACHE_TTL", "soon")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadDatabase(t *testing.T) {
	t.Run("No JWT secret needed", func(t *testing.T) {
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("JWT_SECRET", "")
		t.Setenv("DB_MAX_OPEN_CONNS", "")
		t.Setenv("DB_MAX_IDLE_CONNS", "2")

		cfg, err := LoadDatabase()
		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.DBHost)
		assert.Equal(t, 25, cfg.DBMaxOpenConns)
		assert.Equal(t, 2, cfg.DBMaxIdleConns)
		assert.Empty(t, cfg.AppPort)
	})

	t.Run("Invalid pool size", func(t *testing.T) {
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_MAX_OPEN_CONNS", "-1")

		_, err := LoadDatabase()
		assert.EqualError(t, err, `invalid DB_MAX_OPEN_CONNS "-1"`)
	})

	t.Run("Invalid low stock threshold", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LOW_STOCK_THRESHOLD", "many")

		_, err := Load()
		assert.EqualError(t, err, `invalid LOW_STOCK_THRESHOLD "many"`)
	})
}
