package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	postKeyPrefix      = "post:%d"
	likeCountKeyPrefix = "post:likes:%d"
)

const (
	// PostTTL bounds staleness of cached single-post reads.
	PostTTL = 5 * time.Minute
)

// PostKey returns the cache key for a single post read.
func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// LikeCountKey returns the cache key for a post's like counter.
func LikeCountKey(postID uint) string {
	return fmt.Sprintf(likeCountKeyPrefix, postID)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which should populate
// dest), then stores the result with ttl. Cache write failures are ignored;
// the store remains authoritative.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes the key from the cache.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// adjustLikeScript increments the counter only while the key exists, in one
// atomic step. A separate EXISTS check would race key expiry and let INCRBY
// resurrect the key as a bare delta with no TTL.
var adjustLikeScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("INCRBY", KEYS[1], ARGV[1])
end
return false
`)

// AdjustLikeCount shifts the cached like counter for a post. The counter only
// exists after a GetLikeCount fill; adjusting an absent key is skipped so a
// stale zero is never created.
func AdjustLikeCount(ctx context.Context, postID uint, delta int64) {
	if client == nil {
		return
	}
	_ = adjustLikeScript.Run(ctx, client, []string{LikeCountKey(postID)}, delta).Err()
}

// GetLikeCount reads the cached like counter. Returns (count, true) on a hit.
func GetLikeCount(ctx context.Context, postID uint) (int64, bool) {
	if client == nil {
		return 0, false
	}
	n, err := client.Get(ctx, LikeCountKey(postID)).Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetLikeCount fills the cached like counter from the authoritative store.
func SetLikeCount(ctx context.Context, postID uint, count int64) {
	if client == nil {
		return
	}
	client.Set(ctx, LikeCountKey(postID), count, PostTTL)
}
