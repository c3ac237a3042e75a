package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Geocode GeocodeConfig
	Uploads UploadsConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// StoreConfig selects the persistence backend. TxTimeout bounds each
// place/user unit of work.
type StoreConfig struct {
	Driver    string
	MongoURI  string
	Database  string
	TxTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret   string
	TokenTTL    time.Duration
	HashTimeout time.Duration
}

type GeocodeConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type UploadsConfig struct {
	Dir string
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			AllowedOrigins: getSliceEnv("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Store: StoreConfig{
			Driver:    getEnv("STORE_DRIVER", DriverMongo),
			MongoURI:  getEnv("MONGODB_URI", ""),
			Database:  getEnv("MONGODB_DATABASE", "places"),
			TxTimeout: getDurationEnv("TX_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			TokenTTL:    getDurationEnv("TOKEN_TTL", time.Hour),
			HashTimeout: getDurationEnv("HASH_TIMEOUT", 5*time.Second),
		},
		Geocode: GeocodeConfig{
			Endpoint: getEnv("GEOCODE_ENDPOINT", "https://maps.googleapis.com/maps/api/geocode/json"),
			APIKey:   getEnv("GEOCODE_API_KEY", ""),
			Timeout:  getDurationEnv("GEOCODE_TIMEOUT", 5*time.Second),
			CacheTTL: getDurationEnv("GEOCODE_CACHE_TTL", 24*time.Hour),
		},
		Uploads: UploadsConfig{
			Dir: getEnv("UPLOAD_DIR", "uploads/images"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate reports every missing or invalid value at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("ALLOWED_ORIGINS must have at least one origin"))
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when STORE_DRIVER is mongo"))
		}
		if c.Store.Database == "" {
			errs = append(errs, errors.New("MONGODB_DATABASE is required"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be '%s' or '%s', got '%s'", DriverMongo, DriverMemory, c.Store.Driver))
	}
	if c.Store.TxTimeout <= 0 {
		errs = append(errs, errors.New("TX_TIMEOUT must be positive"))
	}

	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required"))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.HashTimeout <= 0 {
		errs = append(errs, errors.New("HASH_TIMEOUT must be positive"))
	}

	if c.Geocode.Endpoint == "" {
		errs = append(errs, errors.New("GEOCODE_ENDPOINT is required"))
	}
	if c.Geocode.Timeout <= 0 {
		errs = append(errs, errors.New("GEOCODE_TIMEOUT must be positive"))
	}

	if c.Uploads.Dir == "" {
		errs = append(errs, errors.New("UPLOAD_DIR is required"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
