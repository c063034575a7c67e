package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Config holds the looper daemon settings, loaded from environment variables.
type Config struct {
	// NATS connection
	NATSURL string
	Subject string // prefix for .cmd, .evt and .intent subjects

	// Controller
	SampleRate   float64
	Debounce     time.Duration // reprocess debounce after speed/pitch edits
	CaptureMode  string        // "input" or "mix"
	CaptureMuted bool

	Debug bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		NATSURL: envStr("LOOPER_NATS_URL", nats.DefaultURL),
		Subject: envStr("LOOPER_SUBJECT", "looper"),

		SampleRate:   envFloat("LOOPER_SAMPLE_RATE", 44100),
		Debounce:     time.Duration(envInt("LOOPER_DEBOUNCE_MS", 250)) * time.Millisecond,
		CaptureMode:  captureMode(envStr("LOOPER_CAPTURE_MODE", "input")),
		CaptureMuted: envBool("LOOPER_CAPTURE_MUTED", false),

		Debug: envBool("LOOPER_DEBUG", false),
	}
}

func captureMode(v string) string {
	if strings.EqualFold(v, "mix") {
		return "mix"
	}
	return "input"
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
