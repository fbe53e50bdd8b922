// Package config loads settings from `.env` and the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every tunable of the binaries.
type Config struct {
	Port         string        // PORT
	LogLevel     zerolog.Level // LOG_LEVEL
	ClientOrigin string        // CLIENT_ORIGIN
	JWTSecret    string        // JWT_SECRET
	TokenTTL     time.Duration // TOKEN_TTL_HOURS
	DBPath       string        // DB_PATH; empty disables the results journal
	Haptics      string        // HAPTICS: beep | log | off
	LogFile      string        // LOG_FILE (terminal renderer only)
}

// Load reads `.env` (if present) and then the environment.
func Load() Config {
	_ = godotenv.Load()

	lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	dbPath, ok := os.LookupEnv("DB_PATH")
	if !ok {
		dbPath = "./data/guesstheword.db"
	}
	return Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     lvl,
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		TokenTTL:     time.Duration(envInt("TOKEN_TTL_HOURS", 12)) * time.Hour,
		DBPath:       dbPath,
		Haptics:      getEnv("HAPTICS", "beep"),
		LogFile:      getEnv("LOG_FILE", "guesstheword.log"),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses k as a positive integer, falling back to def.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
