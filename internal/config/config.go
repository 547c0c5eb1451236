package config

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"time"
)

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration
	StaticDir   string
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "3000"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/taskhive?parseTime=true"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   2 * time.Hour,
		StaticDir:   getEnv("STATIC_DIR", "./public"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			slog.Error("JWT_SECRET must be set in production environment")
			os.Exit(1)
		}
		cfg.JWTSecret = ephemeralSecret()
		slog.Warn("JWT_SECRET not set, generated an ephemeral secret; tokens will not survive restarts")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ephemeralSecret generates a random signing secret for development use.
func ephemeralSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		slog.Error("failed to generate ephemeral secret", "error", err)
		os.Exit(1)
	}
	return hex.EncodeToString(buf)
}
