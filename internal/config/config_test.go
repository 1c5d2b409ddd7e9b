package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "FNTEST_"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FUNCTION_NAME", "")
	t.Setenv(testPrefix+"PRIMARY.ENV", "development")
	t.Setenv(testPrefix+"SERVER.PORT", "8080")
	t.Setenv(testPrefix+"SERVER.READ_TIMEOUT", "30")
	t.Setenv(testPrefix+"SERVER.WRITE_TIMEOUT", "30")
	t.Setenv(testPrefix+"SERVER.IDLE_TIMEOUT", "60")
	t.Setenv(testPrefix+"SERVER.CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	t.Setenv(testPrefix+"STORAGE.DRIVER", "memory")
	t.Setenv(testPrefix+"REDIS.ADDRESS", "localhost:6379")
	t.Setenv(testPrefix+"AUTH.PROVIDER", "jwt")
	t.Setenv(testPrefix+"AUTH.JWT_SECRET", "test-secret-at-least-16-chars")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := load(testPrefix)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "news", cfg.Triggers.NewsTopic)
	assert.Equal(t, 10, cfg.Triggers.Concurrency)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "app-functions", cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.True(t, cfg.Observability.HasCheck("redis"))
}

func TestLoad_PartialObservabilityBlock(t *testing.T) {
	setBaseEnv(t)
	t.Setenv(testPrefix+"OBSERVABILITY.LOGGING.LEVEL", "debug")

	cfg, err := load(testPrefix)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, 5*time.Second, cfg.Observability.HealthChecks.Timeout)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv(testPrefix+"STORAGE.DRIVER", "firestore")

	_, err := load(testPrefix)
	assert.Error(t, err)
}

func TestLoad_MongoRequiresURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv(testPrefix+"STORAGE.DRIVER", "mongo")

	_, err := load(testPrefix)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.mongo.url")
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv(testPrefix+"AUTH.JWT_SECRET", "short")

	_, err := load(testPrefix)
	assert.Error(t, err)
}

func TestLoad_FunctionNameFallsBackToPlatformEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("FUNCTION_NAME", FunctionNewsNotify)

	cfg, err := load(testPrefix)
	require.NoError(t, err)

	assert.True(t, cfg.Primary.Serves(FunctionNewsNotify))
	assert.False(t, cfg.Primary.Serves(FunctionProfile))
}

func TestPrimary_ServesEverythingWhenUnset(t *testing.T) {
	p := Primary{Env: "local"}
	for _, name := range []string{FunctionProfile, FunctionAccountSync, FunctionNewsNotify, FunctionWelcomeEmail} {
		assert.True(t, p.Serves(name), name)
	}
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	cfg := &ObservabilityConfig{Environment: "production"}
	assert.Equal(t, "info", cfg.GetLogLevel())

	cfg.Environment = "development"
	assert.Equal(t, "debug", cfg.GetLogLevel())

	cfg.Logging.Level = "warn"
	assert.Equal(t, "warn", cfg.GetLogLevel())
}
