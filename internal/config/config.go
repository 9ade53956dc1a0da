package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Redis       RedisConfig
	API         APIConfig
	Shop        ShopConfig
	Admin       AdminConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether the order journal should be stored in postgres
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether the order journal should be stored in redis
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type APIConfig struct {
	BaseURL string
	CDNURL  string
	Timeout time.Duration
}

type ShopConfig struct {
	SessionCookie  string
	SessionTTL     time.Duration
	RetainContacts bool
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies may set X-Forwarded-For; empty means the peer address is the client
	TrustedProxies []string
}

type AdminConfig struct {
	KeyHash string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("API_TIMEOUT", "10s")
	viper.SetDefault("SESSION_COOKIE", "larek_session")
	viper.SetDefault("SESSION_TTL", "30m")
	viper.SetDefault("RATE_LIMIT_RPS", "10")
	viper.SetDefault("RATE_LIMIT_BURST", "20")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(getEnvOrViper("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnvOrViper("SESSION_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnvOrViper("RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnvOrViper("RATE_LIMIT_BURST", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	origin := strings.TrimSuffix(getEnvOrViper("API_ORIGIN", ""), "/")

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", ""),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "larek"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", ""),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		API: APIConfig{
			BaseURL: getEnvOrViper("LAREK_API_URL", originPath(origin, "/api/weblarek")),
			CDNURL:  getEnvOrViper("LAREK_CDN_URL", originPath(origin, "/content/weblarek")),
			Timeout: timeout,
		},
		Shop: ShopConfig{
			SessionCookie:  getEnvOrViper("SESSION_COOKIE", "larek_session"),
			SessionTTL:     sessionTTL,
			RetainContacts: getEnvOrViper("RETAIN_CONTACTS", "false") == "true",
			RateLimitRPS:   rps,
			RateLimitBurst: burst,
			TrustedProxies: splitList(getEnvOrViper("TRUSTED_PROXIES", "")),
		},
		Admin: AdminConfig{
			KeyHash: getEnvOrViper("ADMIN_KEY_HASH", ""),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("API_ORIGIN or LAREK_API_URL is required")
	}
	if cfg.API.CDNURL == "" {
		return nil, fmt.Errorf("API_ORIGIN or LAREK_CDN_URL is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func originPath(origin, path string) string {
	if origin == "" {
		return ""
	}
	return origin + path
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

// splitList parses a comma separated setting, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
