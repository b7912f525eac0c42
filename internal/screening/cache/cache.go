// Package cache provides a Redis-backed evaluation result cache keyed on a
// digest of the raw request payload.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"veriscreen/internal/screening/models"
	"veriscreen/pkg/platform/sentinel"
)

const evaluationKeyPrefix = "screening:eval:"

// ResultCache stores completed evaluations keyed by request digest. A nil
// *ResultCache is a no-op, so callers need no branching when Redis is not
// configured.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *ResultCache {
	if client == nil {
		return nil
	}
	return &ResultCache{client: client, ttl: ttl}
}

// RequestDigest derives the cache key for a request payload. Two byte-equal
// payloads share one entry; semantically equal but differently encoded
// payloads do not, which is acceptable for a recompute-on-miss cache.
func RequestDigest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached evaluation for the digest. Returns
// sentinel.ErrNotFound on a miss.
func (c *ResultCache) Get(ctx context.Context, digest string) (*models.Evaluation, error) {
	if c == nil {
		return nil, sentinel.ErrNotFound
	}

	raw, err := c.client.Get(ctx, evaluationKeyPrefix+digest).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var evaluation models.Evaluation
	if err := json.Unmarshal(raw, &evaluation); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &evaluation, nil
}

// Set stores the evaluation under the digest for the configured TTL.
func (c *ResultCache) Set(ctx context.Context, digest string, evaluation *models.Evaluation) error {
	if c == nil {
		return nil
	}

	raw, err := json.Marshal(evaluation)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.client.Set(ctx, evaluationKeyPrefix+digest, raw, c.ttl).Err()
}
