package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/pkg/rag/conversation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "chat:session-lock:"
	defaultLease  = 2 * time.Minute
	retryInterval = 50 * time.Millisecond
)

// Deletes the key only while it still holds our token, so an expired lease
// taken over by another instance is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serialises session turns across API instances.
type RedisLocker struct {
	rdb   *redis.Client
	lease time.Duration
	log   logger.ILogger
}

// NewRedisLocker panics on a nil client. lease must outlive the model timeout;
// bootstrap enforces that.
func NewRedisLocker(rdb *redis.Client, lease time.Duration, log logger.ILogger) *RedisLocker {
	if rdb == nil {
		panic("lock: nil redis client")
	}
	if lease <= 0 {
		lease = defaultLease
	}
	return &RedisLocker{rdb: rdb, lease: lease, log: log}
}

var _ conversation.Locker = (*RedisLocker)(nil)

func (l *RedisLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	key := keyPrefix + sessionID
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire session lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, token, sessionID) })
	}, nil
}

// release uses its own context; the request context may already be cancelled.
func (l *RedisLocker) release(key, token, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
		l.log.Warn("LOCK", "Failed to release session lock", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
