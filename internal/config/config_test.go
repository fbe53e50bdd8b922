package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "CLIENT_ORIGIN", "JWT_SECRET", "TOKEN_TTL_HOURS", "HAPTICS", "LOG_FILE"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.Port != "5175" || c.LogLevel != zerolog.InfoLevel || c.TokenTTL != 12*time.Hour {
		t.Errorf("defaults: %+v", c)
	}
	if c.JWTSecret != "dev_secret_change_me" || c.Haptics != "beep" || c.ClientOrigin != "http://localhost:5173" {
		t.Errorf("defaults: %+v", c)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("DB_PATH", "")
	t.Setenv("HAPTICS", "off")
	c := Load()
	if c.Port != "9000" || c.LogLevel != zerolog.DebugLevel || c.TokenTTL != 2*time.Hour {
		t.Errorf("overrides: %+v", c)
	}
	if c.DBPath != "" {
		t.Errorf("DB_PATH set empty should disable the journal, got %q", c.DBPath)
	}
	if c.Haptics != "off" {
		t.Errorf("Haptics = %q", c.Haptics)
	}
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("TOKEN_TTL_HOURS", "-3")
	c := Load()
	if c.LogLevel != zerolog.InfoLevel || c.TokenTTL != 12*time.Hour {
		t.Errorf("fallbacks: %+v", c)
	}
}
