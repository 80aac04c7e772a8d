package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tienda/tienda-backend/pkg/logger"
)

const cacheKeyPrefix = "cache:catalog:"

// Cache is a read-through Redis cache for catalog GET responses.
// Stock and rating freshness is best-effort here: every order and review
// path reads the database directly, the cache only serves browsing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a catalog response cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Middleware serves cached JSON bodies for successful GET responses
func (c *Cache) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil || c.client == nil || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := cacheKey(r)
		ctx := r.Context()

		if body, err := c.client.Get(ctx, key).Bytes(); err == nil && len(body) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		}

		rec := &recordingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		rec.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(rec, r)

		if rec.statusCode == http.StatusOK && rec.body.Len() > 0 {
			if err := c.client.Set(ctx, key, rec.body.Bytes(), c.ttl).Err(); err != nil {
				logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to store cached response")
			}
		}
	}
}

// Invalidate drops all cached catalog responses after a product write
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to scan catalog cache keys")
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to invalidate catalog cache")
		}
	}
}

func cacheKey(r *http.Request) string {
	sum := sha256.Sum256([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s%s", cacheKeyPrefix, hex.EncodeToString(sum[:16]))
}

type recordingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *recordingResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingResponseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}
