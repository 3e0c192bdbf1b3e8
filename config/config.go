package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the road condition service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// Detector configuration
	DetectorProvider string // "http" or "stub"
	DetectorURL      string

	// Judge configuration
	JudgeProvider string // "gemini" or "stub"
	GeminiAPIKey  string
	GeminiModel   string
	JudgeTimeout  time.Duration

	// Image storage
	StorageDir string

	// Directions passthrough
	OSRMBaseURL string

	// RabbitMQ fanout for scored reports (optional)
	RabbitMQURL        string
	RabbitMQExchange   string
	RabbitMQRoutingKey string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "roadcondition"),

		// Server defaults
		Port: getEnv("PORT", "8080"),

		// Detector defaults
		DetectorProvider: getEnv("DETECTOR_PROVIDER", "http"),
		DetectorURL:      getEnv("DETECTOR_URL", "http://localhost:8090"),

		// Judge defaults
		JudgeProvider: getEnv("JUDGE_PROVIDER", "gemini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		JudgeTimeout:  getDurationEnv("JUDGE_TIMEOUT", 60*time.Second),

		// Storage defaults
		StorageDir: getEnv("STORAGE_DIR", "./report-images"),

		// Directions defaults
		OSRMBaseURL: getEnv("OSRM_BASE_URL", "https://router.project-osrm.org"),

		// RabbitMQ defaults (empty URL disables the publisher)
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:   getEnv("RABBITMQ_EXCHANGE", "road_reports"),
		RabbitMQRoutingKey: getEnv("RABBITMQ_ROUTING_KEY", "report.scored"),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
