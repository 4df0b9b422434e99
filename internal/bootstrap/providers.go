package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"legal-chatbot-be/internal/config"
	"legal-chatbot-be/internal/repository"
	"legal-chatbot-be/internal/repository/unitofwork"
	"legal-chatbot-be/pkg/embedding"
	"legal-chatbot-be/pkg/vectorindex"
	"legal-chatbot-be/pkg/vectorindex/memory"
	"legal-chatbot-be/pkg/vectorindex/qdrant"

	"github.com/redis/go-redis/v9"
)

// NewEmbeddingProvider picks the sentence embedder. All of them must return
// 384-wide vectors so the index stays queryable after a switch.
func NewEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	var p embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama", "":
		p = embedding.NewOllamaProvider(cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
	case "huggingface":
		p = embedding.NewHuggingFaceProvider(cfg.Ai.HuggingFaceAPIKey, cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
	case "openai":
		p = embedding.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)
	return p, nil
}

// NewVectorIndex returns the chunk store named by VECTOR_INDEX.
func NewVectorIndex(ctx context.Context, cfg *config.Config, uowFactory unitofwork.RepositoryFactory) (vectorindex.Index, error) {
	switch cfg.Retrieval.VectorIndex {
	case "pgvector", "":
		return repository.NewChunkIndex(uowFactory, cfg.Retrieval.MinScore), nil
	case "qdrant":
		idx := qdrant.NewIndex(qdrant.Config{
			URL:        cfg.Retrieval.QdrantURL,
			APIKey:     cfg.Retrieval.QdrantAPIKey,
			Collection: cfg.Retrieval.QdrantCollection,
		})
		if err := idx.EnsureCollection(ctx, embedding.Dimension); err != nil {
			return nil, fmt.Errorf("qdrant collection: %w", err)
		}
		return idx, nil
	case "memory":
		log.Println("[WARN] Using in-memory vector index; ingested documents are lost on restart")
		return memory.NewIndex(), nil
	}
	return nil, fmt.Errorf("unsupported vector index: %s", cfg.Retrieval.VectorIndex)
}

// NewRedisClient returns nil when Redis is unreachable; callers fall back
// to single-instance behaviour.
func NewRedisClient(ctx context.Context, url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb.Close()
		return nil
	}
	return rdb
}

// lockLeaseMargin covers retrieval and persistence around the model call.
const lockLeaseMargin = 30 * time.Second

// SessionLockLease returns SESSION_LOCK_LEASE raised, when needed, so a
// Redis lock cannot expire while a turn still waits on the model.
func SessionLockLease(cfg *config.Config) time.Duration {
	lease := cfg.Chat.LockLease
	if floor := cfg.Ai.LLMTimeout + lockLeaseMargin; lease < floor {
		log.Printf("[WARN] SESSION_LOCK_LEASE %s is shorter than LLM_TIMEOUT plus %s, using %s", lease, lockLeaseMargin, floor)
		lease = floor
	}
	return lease
}
