package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends selectable through AUTH_SESSION_STORE.
const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
	SessionStoreMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. JWTSecret must never be logged.
type AuthConfig struct {
	JWTSecret                   string
	TokenTTLSeconds             int
	SessionStore                string
	SessionRetentionSeconds     int
	SessionSweepIntervalSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	dsn := os.Getenv("POSTGRES_DSN")
	defaultStore := SessionStoreMemory
	if dsn != "" {
		defaultStore = SessionStorePostgres
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "lottery-auth"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            dsn,
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:                   getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLSeconds:             getEnvAsInt("AUTH_TOKEN_TTL_SECONDS", 86400),
			SessionStore:                strings.ToLower(getEnv("AUTH_SESSION_STORE", defaultStore)),
			SessionRetentionSeconds:     getEnvAsInt("AUTH_SESSION_RETENTION_SECONDS", 7*86400),
			SessionSweepIntervalSeconds: getEnvAsInt("AUTH_SESSION_SWEEP_INTERVAL_SECONDS", 0),
		},
	}

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Validate checks the auth settings for values the service cannot run with.
func (a AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET must not be empty")
	}
	if a.TokenTTLSeconds <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL_SECONDS must be positive, got %d", a.TokenTTLSeconds)
	}
	switch a.SessionStore {
	case SessionStorePostgres, SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("unknown AUTH_SESSION_STORE %q", a.SessionStore)
	}
	return nil
}

// TokenTTL returns the lifetime of issued tokens and their sessions.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLSeconds) * time.Second
}

// SessionRetention returns how long lapsed sessions are kept by stores that expire keys.
func (a AuthConfig) SessionRetention() time.Duration {
	if a.SessionRetentionSeconds < 0 {
		return 0
	}
	return time.Duration(a.SessionRetentionSeconds) * time.Second
}

// SweepInterval returns the sweeper period; zero disables the sweeper.
func (a AuthConfig) SweepInterval() time.Duration {
	if a.SessionSweepIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(a.SessionSweepIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
