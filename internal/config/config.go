package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Chat      ChatConfig
	Ingest    IngestConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RagLogFilePath     string
	EventsLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
}

func (c AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret string
	JwtTTL    time.Duration
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "huggingface" or "openai"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	EmbeddingCacheTTL time.Duration
	HuggingFaceAPIKey string
	OpenAIAPIKey      string
	LLMProvider       string // "openai", "huggingface" or "ollama"
	LLMModel          string
	LLMBaseURL        string
	LLMTemperature    float64
	LLMTimeout        time.Duration
	LLMMaxRetries     int
}

type RetrievalConfig struct {
	VectorIndex      string // "pgvector", "qdrant" or "memory"
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	TopK             int
	MinScore         float64
}

type ChatConfig struct {
	HistoryLimit int // 0 sends the full history
	SessionLock  string
	LockLease    time.Duration
}

type IngestConfig struct {
	Topic        string
	ChunkSize    int
	ChunkOverlap int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RagLogFilePath:     getEnv("RAG_LOG_FILE_PATH", "logs/rag.log"),
			EventsLogFilePath:  getEnv("EVENTS_LOG_FILE_PATH", "logs/events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
			JwtTTL:    getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			EmbeddingCacheTTL: getEnvAsDuration("EMBEDDING_CACHE_TTL", 10*time.Minute),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", ""),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMTemperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			LLMTimeout:        getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			LLMMaxRetries:     getEnvAsInt("LLM_MAX_RETRIES", 0),
		},
		Retrieval: RetrievalConfig{
			VectorIndex:      strings.ToLower(getEnv("VECTOR_INDEX", "pgvector")),
			QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
			QdrantCollection: getEnv("QDRANT_COLLECTION", "legal_chunks"),
			TopK:             getEnvAsInt("RETRIEVAL_TOP_K", 10),
			MinScore:         getEnvAsFloat("RETRIEVAL_MIN_SCORE", 0),
		},
		Chat: ChatConfig{
			HistoryLimit: getEnvAsInt("CHAT_HISTORY_LIMIT", 0),
			SessionLock:  strings.ToLower(getEnv("SESSION_LOCK", "local")),
			LockLease:    getEnvAsDuration("SESSION_LOCK_LEASE", 2*time.Minute),
		},
		Ingest: IngestConfig{
			Topic:        getEnv("INGEST_TOPIC", "INGEST_DOCUMENT"),
			ChunkSize:    getEnvAsInt("INGEST_CHUNK_SIZE", 2000),
			ChunkOverlap: getEnvAsInt("INGEST_CHUNK_OVERLAP", 200),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
