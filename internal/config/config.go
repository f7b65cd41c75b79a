package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mihira/deskpulse/pkg/logger"
)

// Config holds all runtime settings, loaded once at startup.
type Config struct {
	Port        string
	DataDir     string
	JWTSecret   string
	TokenExpiry time.Duration

	NewsAPIKey    string
	NewsAPIBase   string
	WeatherAPIKey string
	TranslateURL  string

	HTTPTimeout time.Duration
}

// LoadConfig reads configuration from a .env file and the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Log.Warn("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		JWTSecret:   getEnv("JWT_SECRET", "changeme"),
		TokenExpiry: getDurationHours("TOKEN_EXPIRY_HOURS", 24),

		NewsAPIKey:    os.Getenv("NEWS_API_KEY"),
		NewsAPIBase:   getEnv("NEWS_API_BASE", "https://newsapi.org/v2"),
		WeatherAPIKey: os.Getenv("WEATHER_API_KEY"),
		TranslateURL:  getEnv("TRANSLATE_URL", "https://api.mymemory.translated.net/get"),

		HTTPTimeout: 10 * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationHours(key string, fallback int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if hours, err := strconv.Atoi(value); err == nil {
			return time.Duration(hours) * time.Hour
		}
	}
	return time.Duration(fallback) * time.Hour
}
