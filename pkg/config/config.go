package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	CompletionsAPIURL string
	CompletionsAPIKey string
	CompletionsModel  string
	EmbeddingsAPIURL  string
	EmbeddingsAPIKey  string
	EmbeddingsModel   string
	HTTPPort          string
	DBPath            string
	NatsURL           string
	NaverClientID     string
	NaverClientSecret string
	SearchTimeoutMs   string
	EmbedTimeoutMs    string
	EmbedCacheSize    string
	LogLevel          string
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvOrPanic(key string, printEnv bool) string {
	value := getEnv(key, "", printEnv)
	if value == "" {
		panic(fmt.Sprintf("Environment variable %s is not set", key))
	}
	return value
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{
		CompletionsAPIURL: getEnv("COMPLETIONS_API_URL", "https://api.openai.com/v1", printEnv),
		CompletionsAPIKey: getEnvOrPanic("COMPLETIONS_API_KEY", printEnv),
		CompletionsModel:  getEnv("COMPLETIONS_MODEL", "gpt-4.1-mini", printEnv),
		EmbeddingsAPIURL:  getEnv("EMBEDDINGS_API_URL", "https://api.openai.com/v1", printEnv),
		EmbeddingsAPIKey:  getEnv("EMBEDDINGS_API_KEY", "", printEnv),
		EmbeddingsModel:   getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small", printEnv),
		HTTPPort:          getEnv("HTTP_PORT", "8080", printEnv),
		DBPath:            getEnv("DB_PATH", "./output/sqlite/sessions.db", printEnv),
		NatsURL:           getEnv("NATS_URL", "nats://localhost:4222", printEnv),
		NaverClientID:     getEnv("NAVER_CLIENT_ID", "", printEnv),
		NaverClientSecret: getEnv("NAVER_CLIENT_SECRET", "", printEnv),
		SearchTimeoutMs:   getEnv("SEARCH_TIMEOUT_MS", "3000", printEnv),
		EmbedTimeoutMs:    getEnv("EMBED_TIMEOUT_MS", "1500", printEnv),
		EmbedCacheSize:    getEnv("EMBED_CACHE_SIZE", "512", printEnv),
		LogLevel:          getEnv("LOG_LEVEL", "info", printEnv),
	}

	if conf.EmbeddingsAPIKey == "" {
		conf.EmbeddingsAPIKey = conf.CompletionsAPIKey
	}
	return conf, nil
}
