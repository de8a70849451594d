package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Thresholds are the detector tuning knobs. A Thresholds value is passed
// into every detector call; detectors never read ambient state.
type Thresholds struct {
	EMAProximityPercent          float64
	VolumeSpikeMultiplier        float64
	Breakout52WeekPercent        float64
	ConfluenceLookbackDays       int
	ConfluenceMinPullbackPercent float64
	ConfluenceMaxPullbackPercent float64
}

// DefaultThresholds returns the stock detector tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EMAProximityPercent:          1.5,
		VolumeSpikeMultiplier:        2.0,
		Breakout52WeekPercent:        5.0,
		ConfluenceLookbackDays:       60,
		ConfluenceMinPullbackPercent: 2.0,
		ConfluenceMaxPullbackPercent: 20.0,
	}
}

// Config holds all application configuration
type Config struct {
	KiteAPIKey       string
	HistoryDays      int
	RequestTimeout   int // seconds
	LogLevel         string
	TelegramBotToken string
	TelegramChatID   int64
	Thresholds       Thresholds
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Config{
		KiteAPIKey:       os.Getenv("KITE_API_KEY"),
		HistoryDays:      getEnvIntWithDefault("HISTORY_DAYS", 400),
		RequestTimeout:   getEnvIntWithDefault("REQUEST_TIMEOUT", 30),
		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),
		Thresholds: Thresholds{
			EMAProximityPercent:          getEnvFloatWithDefault("EMA_PROXIMITY_PERCENT", 1.5),
			VolumeSpikeMultiplier:        getEnvFloatWithDefault("VOLUME_SPIKE_MULTIPLIER", 2.0),
			Breakout52WeekPercent:        getEnvFloatWithDefault("BREAKOUT_52W_PERCENT", 5.0),
			ConfluenceLookbackDays:       getEnvIntWithDefault("CONFLUENCE_LOOKBACK_DAYS", 60),
			ConfluenceMinPullbackPercent: getEnvFloatWithDefault("CONFLUENCE_MIN_PULLBACK_PERCENT", 2.0),
			ConfluenceMaxPullbackPercent: getEnvFloatWithDefault("CONFLUENCE_MAX_PULLBACK_PERCENT", 20.0),
		},
	}

	return &cfg, nil
}

// EnvSession reads a pre-established Kite access token from the environment.
// Token refresh is the integrator's job; a missing token simply reads as an
// invalid session.
type EnvSession struct{}

func (EnvSession) Token() string {
	return os.Getenv("KITE_ACCESS_TOKEN")
}

func (EnvSession) Valid() bool {
	return os.Getenv("KITE_ACCESS_TOKEN") != ""
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
