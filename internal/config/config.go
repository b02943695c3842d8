package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Retention    RetentionConfig
	Live         LiveConfig
	IPLookup     IPLookupConfig
	Report       ReportConfig
	Notification NotificationConfig
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

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret         string
	SessionTTLMinutes int
}

// RetentionConfig controls the sweep that deletes old tickets.
type RetentionConfig struct {
	MaxAgeDays   int
	SweepMinutes int
	SweepOnLoad  bool
}

// LiveConfig controls the store change feed.
type LiveConfig struct {
	ReconnectSeconds int
}

// IPLookupConfig configures the best-effort public IP lookup.
type IPLookupConfig struct {
	URL       string
	TimeoutMS int
}

// ReportConfig controls report caching.
type ReportConfig struct {
	CacheSeconds int
}

// NotificationConfig holds outbound notification endpoints.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
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
			JWTSecret:         getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTTLMinutes: getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 7*24*60),
		},
		Retention: RetentionConfig{
			MaxAgeDays:   getEnvAsInt("RETENTION_MAX_AGE_DAYS", 7),
			SweepMinutes: getEnvAsInt("RETENTION_SWEEP_MINUTES", 60),
			SweepOnLoad:  getEnvAsBool("RETENTION_ON_LOAD", true),
		},
		Live: LiveConfig{
			ReconnectSeconds: getEnvAsInt("LIVE_RECONNECT_SECONDS", 5),
		},
		IPLookup: IPLookupConfig{
			URL:       getEnv("IP_LOOKUP_URL", "https://api.ipify.org?format=json"),
			TimeoutMS: getEnvAsInt("IP_LOOKUP_TIMEOUT_MS", 1500),
		},
		Report: ReportConfig{
			CacheSeconds: getEnvAsInt("REPORT_CACHE_SECONDS", 30),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if cfg.App.Env == "production" && cfg.Auth.JWTSecret == "dev-secret" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set in production")
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

// SessionTTL returns how long a login stays valid.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// MaxAge returns the ticket retention window.
func (r RetentionConfig) MaxAge() time.Duration {
	if r.MaxAgeDays <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(r.MaxAgeDays) * 24 * time.Hour
}

// SweepInterval returns the period of the background retention sweep; zero disables it.
func (r RetentionConfig) SweepInterval() time.Duration {
	if r.SweepMinutes <= 0 {
		return 0
	}
	return time.Duration(r.SweepMinutes) * time.Minute
}

// ReconnectDelay returns the pause between change feed reconnect attempts.
func (l LiveConfig) ReconnectDelay() time.Duration {
	if l.ReconnectSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(l.ReconnectSeconds) * time.Second
}

// Timeout returns the IP lookup deadline.
func (i IPLookupConfig) Timeout() time.Duration {
	if i.TimeoutMS <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(i.TimeoutMS) * time.Millisecond
}

// CacheTTL returns how long a built report is cached; zero disables caching.
func (r ReportConfig) CacheTTL() time.Duration {
	if r.CacheSeconds <= 0 {
		return 0
	}
	return time.Duration(r.CacheSeconds) * time.Second
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
