package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 100, cfg.CascadeBatchSize)
	assert.EqualValues(t, 10, cfg.DBMaxConns)
	assert.False(t, cfg.IsProd())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("CASCADE_BATCH_SIZE", "25")
	t.Setenv("JWT_ACCESS_TTL", "90s")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 25, cfg.CascadeBatchSize)
	assert.Equal(t, 90*time.Second, cfg.JWTAccessTTL)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"driver":      {"STORE_DRIVER", "mongo"},
		"batch":       {"CASCADE_BATCH_SIZE", "0"},
		"workers":     {"WORKER_COUNT", "-1"},
		"ttl":         {"JWT_REFRESH_TTL", "0s"},
		"prod secret": {"APP_ENV", "prod"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
