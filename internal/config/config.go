package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	NatsURL          string
	NatsToken        string
	DatabaseURL      string
	LogLevel         string
	AnthropicAPIKey  string
	AnthropicModel   string
	EmbeddingURL     string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	TopK             int
}

func Load() Config {
	// Best-effort: a missing .env file is the normal production case.
	_ = godotenv.Load()

	return Config{
		Port:             envInt("DOSSIER_PORT", 8760),
		NatsURL:          envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:        envStr("NATS_TOKEN", ""),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey:  envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   envStr("DOSSIER_MODEL", "claude-sonnet-4-20250514"),
		EmbeddingURL:     envStr("EMBEDDING_URL", "https://api.openai.com/v1"),
		EmbeddingAPIKey:  envStr("EMBEDDING_API_KEY", ""),
		EmbeddingModel:   envStr("EMBEDDING_MODEL", "text-embedding-3-small"),
		QdrantURL:        envStr("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     envStr("QDRANT_API_KEY", ""),
		QdrantCollection: envStr("QDRANT_COLLECTION", "dossier"),
		TopK:             envInt("DOSSIER_TOP_K", 5),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
