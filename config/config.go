// Package config loads runtime settings from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting the application reads at startup.
type Config struct {
	Env             string
	Port            int
	Version         string
	ShutdownTimeout time.Duration
	LogLevel        string

	Database  Database
	JWT       JWT
	Redis     Redis
	RateLimit RateLimit
	CORS      CORS
}

// Database configures the task and credential store.
type Database struct {
	Driver     string
	Path       string
	URL        string
	Debug      bool
	Retries    int
	RetryDelay time.Duration
}

// JWT configures token issuance.
type JWT struct {
	Secret string
	Expire time.Duration
	Issuer string
}

// Redis configures the optional Redis connection. An empty Addr disables
// caching and rate limiting.
type Redis struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Enabled reports whether a Redis address was configured.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// RateLimit configures the request limiters.
type RateLimit struct {
	GeneralRequests int
	GeneralWindow   time.Duration
	AuthRequests    int
	AuthWindow      time.Duration
}

// CORS configures allowed origins.
type CORS struct {
	AllowedOrigins []string
}

// IsDevelopment reports whether detailed error messages may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load reads a .env file when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] Warning: failed to read .env: %v", err)
	}

	env := getEnv("APP_ENV", getEnv("NODE_ENV", EnvDevelopment))

	return &Config{
		Env:             env,
		Port:            getEnvInt("PORT", 5000),
		Version:         getEnv("APP_VERSION", "1.0.0"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Database: Database{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			Path:       getEnv("DB_PATH", "task_manager.db"),
			URL:        getEnv("DATABASE_URL", ""),
			Debug:      getEnvBool("DB_DEBUG", false),
			Retries:    getEnvInt("DB_CONNECT_RETRIES", 5),
			RetryDelay: getEnvDuration("DB_CONNECT_RETRY_DELAY", 5*time.Second),
		},
		JWT: JWT{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expire: getEnvDuration("JWT_EXPIRE", 30*24*time.Hour),
			Issuer: getEnv("JWT_ISSUER", "task-manager-api"),
		},
		Redis: Redis{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		RateLimit: RateLimit{
			GeneralRequests: getEnvInt("RATE_LIMIT_GENERAL", 100),
			GeneralWindow:   getEnvDuration("RATE_LIMIT_GENERAL_WINDOW", 15*time.Minute),
			AuthRequests:    getEnvInt("RATE_LIMIT_AUTH", 5),
			AuthWindow:      getEnvDuration("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
		},
		CORS: CORS{
			AllowedOrigins: splitList(getEnv("FRONTEND_URL", "http://localhost:3000")),
		},
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default.
// Besides Go duration strings it accepts a whole number of days such as "30d".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
