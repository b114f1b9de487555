package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DatabaseURL string

	JWTSecret       []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RefreshCookieName string

	AdminEmail    string
	AdminPassword string

	SkipLegacyImport bool
	LegacyDataFile   string

	RateLimitEnabled       bool
	RateLimitRequests      int
	RateLimitWindowSeconds int

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	LogLevel string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment variables", err)
	}

	cfg := &Config{
		Env:  EnvDefault("LOJACONTROL_ENV", "development"),
		Port: EnvIntDefault("LOJACONTROL_PORT", 8000),

		DatabaseURL: os.Getenv("LOJACONTROL_DATABASE_URL"),

		JWTSecret:       []byte(EnvDefault("LOJACONTROL_JWT_SECRET", "change-this-secret")),
		AccessTokenTTL:  time.Duration(EnvIntDefault("LOJACONTROL_ACCESS_TOKEN_EXPIRE_MINUTES", 720)) * time.Minute,
		RefreshTokenTTL: time.Duration(EnvIntDefault("LOJACONTROL_REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,

		RefreshCookieName: EnvDefault("LOJACONTROL_REFRESH_COOKIE_NAME", "lc_refresh_token"),

		AdminEmail:    strings.ToLower(strings.TrimSpace(EnvDefault("LOJA_ADMIN_EMAIL", "admin@lojacontrol.local"))),
		AdminPassword: EnvDefault("LOJA_ADMIN_PASSWORD", "admin123"),

		SkipLegacyImport: EnvBoolDefault("LOJACONTROL_SKIP_LEGACY_IMPORT", false),
		LegacyDataFile:   EnvDefault("LOJACONTROL_LEGACY_DATA_FILE", "loja_db.json"),

		RateLimitEnabled:       EnvBoolDefault("LOJACONTROL_RATE_LIMIT_ENABLED", true),
		RateLimitRequests:      EnvIntDefault("LOJACONTROL_RATE_LIMIT_REQUESTS", 120),
		RateLimitWindowSeconds: EnvIntDefault("LOJACONTROL_RATE_LIMIT_WINDOW_SECONDS", 60),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_PRODUCT_INDEX", "products"),

		LogLevel: EnvDefault("LOJACONTROL_LOG_LEVEL", "info"),
	}

	if cfg.Env == "production" {
		MustNonEmpty(cfg.DatabaseURL, "LOJACONTROL_DATABASE_URL")
		if string(cfg.JWTSecret) == "change-this-secret" {
			log.Fatal("LOJACONTROL_JWT_SECRET must be set in production")
		}
	}

	return cfg
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
