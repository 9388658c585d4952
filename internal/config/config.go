package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultProhibitedTerms is the stock term list, in match-priority order.
var DefaultProhibitedTerms = []string{
	"arma", "armas", "droga", "drogas", "explosivo", "explosivos",
	"robo", "robado", "robada", "ilegal", "ilegales", "pirateria",
	"falsificacion", "falsificado", "replica", "contrabando",
}

// DefaultCORSHeaders covers bearer auth, the admin bootstrap header and
// request correlation.
const DefaultCORSHeaders = "Origin, Content-Type, Authorization, Accept, X-Admin-Token, X-Request-ID"

type Config struct {
	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Admin
	AdminEmails string
	AdminToken  string

	// Moderation
	ProhibitedTerms []string
	StatsCacheTTL   time.Duration
	RedisURL        string

	// Logging
	LogRetentionDays int

	// Server
	Port        string
	CORSOrigins string
	CORSHeaders string
	AppEnv      string
	SentryDSN   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "marketplace_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "marketplace.sqlite"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		ProhibitedTerms: parseTerms(getEnv("PROHIBITED_TERMS", "")),
		StatsCacheTTL:   parseDuration(getEnv("STATS_CACHE_TTL", "30s"), 30*time.Second),
		RedisURL:        getEnv("REDIS_URL", ""),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		CORSHeaders: getEnv("CORS_HEADERS", DefaultCORSHeaders),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// UsesSQLite is true when the server runs against a local SQLite file.
func (c *Config) UsesSQLite() bool {
	return strings.EqualFold(c.DBDriver, "sqlite")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// parseTerms splits a comma-separated list, keeping order and dropping blanks.
// An empty input yields the default list.
func parseTerms(s string) []string {
	if strings.TrimSpace(s) == "" {
		return append([]string(nil), DefaultProhibitedTerms...)
	}
	parts := strings.Split(s, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
