package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL   string
	MigrationsDir string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Logging
	LogLevel string
	LogFile  string

	// Analytics
	Timezone          *time.Location
	DailyWindowDays   int
	WeeklyWindowWeeks int

	// Rate limiting
	RateLimitPerMinute int

	// Gemini; the assistant runs offline when the key is empty
	GeminiAPIKey     string
	GeminiModel      string
	GeminiConcurrent int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		DatabaseURL:        mustGetEnv("DATABASE_URL"),
		MigrationsDir:      getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:           mustGetEnv("REDIS_URL"),
		JWTSecret:          mustGetEnv("JWT_SECRET"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:            getEnvOrDefault("LOG_FILE", ""),
		Timezone:           getEnvAsLocationOrDefault("APP_TIMEZONE", time.UTC),
		DailyWindowDays:    getEnvAsPositiveIntOrDefault("DAILY_WINDOW_DAYS", 7),
		WeeklyWindowWeeks:  getEnvAsPositiveIntOrDefault("WEEKLY_WINDOW_WEEKS", 8),
		RateLimitPerMinute: getEnvAsPositiveIntOrDefault("RATE_LIMIT_PER_MINUTE", 120),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiConcurrent:   getEnvAsPositiveIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 3),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// Window sizes and limits must stay positive; anything else falls back.
func getEnvAsPositiveIntOrDefault(key string, defaultVal int) int {
	n := getEnvAsIntOrDefault(key, defaultVal)
	if n < 1 {
		return defaultVal
	}
	return n
}

func getEnvAsLocationOrDefault(key string, defaultVal *time.Location) *time.Location {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	loc, err := time.LoadLocation(val)
	if err != nil {
		return defaultVal
	}
	return loc
}
