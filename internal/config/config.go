package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string
	Env          string
	Host         string
	Port         int
	DatabasePath string

	JWTSecret          string
	AccessTokenMinutes int
	RefreshTokenDays   int

	CORSOrigins []string
	Debug       bool
}

func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		AppName:      getEnv("APP_NAME", "chatapi"),
		Env:          getEnv("APP_ENV", "development"),
		Host:         getEnv("HTTP_HOST", "0.0.0.0"),
		Port:         getEnvAsInt("HTTP_PORT", 8000),
		DatabasePath: getEnv("DATABASE_PATH", "chatapi.db"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60),
		RefreshTokenDays:   getEnvAsInt("REFRESH_TOKEN_EXPIRE_DAYS", 7),

		Debug: getEnvAsBool("DEBUG", true),
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
