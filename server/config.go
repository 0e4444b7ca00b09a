package server

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the boundary settings. Values come from the environment,
// optionally loaded from a .env file next to the binary.
type Config struct {
	Addr            string
	MaxVideoPayload int
	MaxAudioPayload int
	VideoExpiry     time.Duration
	AudioExpiry     time.Duration
	Heartbeat       time.Duration
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}
	return Config{
		Addr:            envString("CAMRELAY_ADDR", ":8002"),
		MaxVideoPayload: envInt("CAMRELAY_MAX_VIDEO_BYTES", 1<<20),
		MaxAudioPayload: envInt("CAMRELAY_MAX_AUDIO_BYTES", 512<<10),
		VideoExpiry:     envDuration("CAMRELAY_VIDEO_EXPIRY", 10*time.Second),
		AudioExpiry:     envDuration("CAMRELAY_AUDIO_EXPIRY", 5*time.Second),
		Heartbeat:       envDuration("CAMRELAY_HEARTBEAT", 15*time.Second),
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warnf("invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Warnf("invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return parsed
}
