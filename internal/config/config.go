package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"showpro/internal/cache"
	"showpro/internal/database"
	"showpro/internal/messaging"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Database database.Config
	NATS     messaging.Config
	Redis    cache.Config
	Auth     AuthConfig
	Diary    DiaryConfig
	Import   ImportConfig
	Render   RenderConfig
	Jobs     JobsConfig
}

// AuthConfig describes how bearer tokens from the auth provider are verified.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// DiaryConfig controls calendar bucketing.
type DiaryConfig struct {
	WeekStart time.Weekday
	Location  *time.Location
}

// ImportConfig caps CSV uploads and points at an optional schema override.
type ImportConfig struct {
	MaxBytes   int64
	MaxRows    int
	BatchSize  int
	SchemaFile string
}

type RenderConfig struct {
	ChromeTimeout time.Duration
}

// JobsConfig holds cron specs for the consumers binary.
type JobsConfig struct {
	EmailDispatchCron  string
	PencilReminderCron string
	PencilReminderDays int
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	// .env is optional, real environment wins
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "showpro"),
			Password:           getEnv("DB_PASSWORD", "showpro"),
			DBName:             getEnv("DB_NAME", "showpro"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "showpro"),
			ClientID:  getEnv("NATS_CLIENT_ID", "showpro-api"),
		},

		Redis: cache.Config{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           getEnvInt("REDIS_DB", 0),
			RoleTTL:      time.Duration(getEnvInt("ROLE_CACHE_TTL_SEC", 300)) * time.Second,
			DashboardTTL: time.Duration(getEnvInt("DASHBOARD_CACHE_TTL_SEC", 60)) * time.Second,
		},

		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},

		Diary: DiaryConfig{
			WeekStart: parseWeekStart(getEnv("WEEK_START", "sunday")),
			Location:  loadLocation(getEnv("TIMEZONE", "Europe/London")),
		},

		Import: ImportConfig{
			MaxBytes:   int64(getEnvInt("IMPORT_MAX_BYTES", 5<<20)),
			MaxRows:    getEnvInt("IMPORT_MAX_ROWS", 5000),
			BatchSize:  getEnvInt("IMPORT_BATCH_SIZE", 100),
			SchemaFile: os.Getenv("IMPORT_SCHEMA_FILE"),
		},

		Render: RenderConfig{
			ChromeTimeout: time.Duration(getEnvInt("CHROME_TIMEOUT_SEC", 30)) * time.Second,
		},

		Jobs: JobsConfig{
			EmailDispatchCron:  getEnv("EMAIL_DISPATCH_CRON", "*/5 * * * *"),
			PencilReminderCron: getEnv("PENCIL_REMINDER_CRON", "0 8 * * *"),
			PencilReminderDays: getEnvInt("PENCIL_REMINDER_DAYS", 7),
		},
	}
}

// parseWeekStart понимает "sunday" и "monday", всё остальное - воскресенье
func parseWeekStart(v string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(v), "monday") {
		return time.Monday
	}
	return time.Sunday
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("Unknown timezone, falling back to UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
