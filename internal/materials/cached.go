package materials

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-classmatch/internal/content"
)

// DefaultContentTTL is how long a class's content snapshot stays cached.
const DefaultContentTTL = 10 * time.Minute

const cacheKeyPrefix = "classmatch:content:"

// Store is a byte-oriented key/value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedRepository is a read-through cache in front of another Repository.
// Cache failures are logged and fall through to the inner repository.
type CachedRepository struct {
	inner Repository
	store Store
	ttl   time.Duration
}

// NewCachedRepository wraps inner with a cache. A non-positive ttl uses DefaultContentTTL.
func NewCachedRepository(inner Repository, store Store, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultContentTTL
	}
	return &CachedRepository{inner: inner, store: store, ttl: ttl}
}

func (r *CachedRepository) ContentForClass(ctx context.Context, classID string) ([]content.LearningContent, error) {
	key := CacheKey(classID)

	data, found, err := r.store.Get(ctx, key)
	switch {
	case err != nil:
		slog.Warn("content cache read failed", "class_id", classID, "error", err)
	case found:
		var items []content.LearningContent
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
		slog.Warn("discarding undecodable cached content", "class_id", classID)
	}

	items, err := r.inner.ContentForClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err != nil {
		slog.Warn("encoding content for cache failed", "class_id", classID, "error", err)
	} else if err := r.store.Set(ctx, key, data, r.ttl); err != nil {
		slog.Warn("content cache write failed", "class_id", classID, "error", err)
	}

	return items, nil
}

// CacheKey returns the cache key for a class's content snapshot.
func CacheKey(classID string) string {
	return cacheKeyPrefix + classID
}
