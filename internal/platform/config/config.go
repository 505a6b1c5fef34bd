package config

import (
	"log/slog"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	DatabaseURL string
	BcryptCost  int
	LogLevel    slog.Level
}

// FromEnv builds a Server config from environment variables so main stays
// lean. An empty DatabaseURL selects the in-memory user store.
func FromEnv() Server {
	addr := os.Getenv("ENROLL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	cost := 12
	if raw := os.Getenv("ENROLL_BCRYPT_COST"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= bcrypt.MinCost && parsed <= bcrypt.MaxCost {
			cost = parsed
		}
	}

	level := slog.LevelInfo
	if os.Getenv("ENROLL_DEBUG") == "true" {
		level = slog.LevelDebug
	}

	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		BcryptCost:  cost,
		LogLevel:    level,
	}
}
