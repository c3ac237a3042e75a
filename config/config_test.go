package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBaseConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: "5000", AllowedOrigins: []string{"http://localhost:3000"}},
		Store:   StoreConfig{Driver: DriverMongo, MongoURI: "mongodb://localhost:27017", Database: "places", TxTimeout: 10 * time.Second},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Auth:    AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour, HashTimeout: 5 * time.Second},
		Geocode: GeocodeConfig{Endpoint: "https://example.com/geocode", Timeout: 5 * time.Second},
		Uploads: UploadsConfig{Dir: "uploads/images"},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	assert.NoError(t, validBaseConfig().Validate())
}

func TestConfig_Validate_MemoryDriverNeedsNoMongo(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Store.Driver = DriverMemory
	cfg.Store.MongoURI = ""

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_ReportsEveryProblem(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Auth.JWTSecret = ""
	cfg.Redis.Addr = ""
	cfg.Store.MongoURI = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "REDIS_ADDR")
	assert.Contains(t, err.Error(), "MONGODB_URI")
}

func TestConfig_Validate_UnknownDriver(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	for _, key := range []string{"PORT", "STORE_DRIVER", "TOKEN_TTL", "ALLOWED_ORIGINS", "UPLOAD_DIR", "GEOCODE_TIMEOUT", "TX_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "places", cfg.Store.Database)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.Store.TxTimeout)
	assert.Equal(t, 5*time.Second, cfg.Geocode.Timeout)
	assert.Equal(t, "uploads/images", cfg.Uploads.Dir)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("STORE_DRIVER", DriverMemory)
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , https://b.example ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}
