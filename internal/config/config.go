package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort  string
	LogLevel  string
	LogFormat string

	// Remote collaborator. When UpstreamURL is empty the service runs the
	// in-process collaborator backed by SQLite and the Gemini API.
	UpstreamURL   string
	UpstreamToken string

	GeminiAPIKey string
	DatabaseURL  string

	// Milliseconds per revealed character of an assistant reply.
	RevealCharDelayMS int

	CustomizeMessageLimit  int
	WebsiteGenerationLimit int
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "console"),
		UpstreamURL:            getEnv("UPSTREAM_URL", ""),
		UpstreamToken:          getEnv("UPSTREAM_TOKEN", ""),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		DatabaseURL:            getEnv("DATABASE_URL", "sitegen.db"),
		RevealCharDelayMS:      getEnvAsInt("REVEAL_CHAR_DELAY_MS", 30),
		CustomizeMessageLimit:  getEnvAsInt("CUSTOMIZE_MESSAGE_LIMIT", 10),
		WebsiteGenerationLimit: getEnvAsInt("WEBSITE_GENERATION_LIMIT", 5),
	}

	if AppConfig.UpstreamURL == "" && AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required when no UPSTREAM_URL is configured")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
