package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const activeSessionTTL = 24 * time.Hour

// ActiveSessionRepository remembers which session each user has open.
// Entries expire after a day of inactivity.
type ActiveSessionRepository struct {
	cache *cache.Cache
}

func NewActiveSessionRepository() *ActiveSessionRepository {
	return &ActiveSessionRepository{
		cache: cache.New(activeSessionTTL, 30*time.Minute),
	}
}

func (r *ActiveSessionRepository) SetActive(userID, sessionID string) {
	r.cache.Set(userID, sessionID, cache.DefaultExpiration)
}

func (r *ActiveSessionRepository) GetActive(userID string) (string, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(string), true
	}
	return "", false
}

func (r *ActiveSessionRepository) ClearActive(userID string) {
	r.cache.Delete(userID)
}
