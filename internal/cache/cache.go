// Package cache memoises query results in Redis. Keys carry the index
// fingerprint, so a run over a changed corpus never reads entries left in the
// shared Redis by an earlier build; the TTL only bounds memory.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/saket-vr/permafind/internal/index"
	"github.com/saket-vr/permafind/internal/query"
	"github.com/saket-vr/permafind/pkg/config"
	"github.com/saket-vr/permafind/pkg/logger"
	"github.com/saket-vr/permafind/pkg/metrics"
	pkgredis "github.com/saket-vr/permafind/pkg/redis"
)

const keyPrefix = "permafind:q:"

// QueryCache caches query Results keyed by their normalized term set.
// Concurrent identical queries on a miss are collapsed with singleflight so
// the engine computes each one once.
type QueryCache struct {
	client      *pkgredis.Client
	ttl         time.Duration
	fingerprint string
	group       singleflight.Group
	metrics     *metrics.Metrics
	logger      *slog.Logger
	hits        atomic.Int64
	misses      atomic.Int64
}

// New returns a cache over client. fingerprint should identify the exact
// index contents so builds over different corpora never share keys. m may
// be nil.
func New(client *pkgredis.Client, cfg config.RedisConfig, fingerprint string, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:      client,
		ttl:         cfg.CacheTTL,
		fingerprint: fingerprint,
		metrics:     m,
		logger:      logger.WithComponent("query-cache"),
	}
}

// GetOrCompute returns the cached Result for terms, or runs computeFn once
// and caches what it returns. The bool reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	terms []string,
	computeFn func() (*query.Result, error),
) (*query.Result, bool, error) {
	key := c.buildKey(terms)
	if result, ok := c.get(ctx, key); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.get(ctx, key); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*query.Result), false, nil
}

// Stats returns the hit and miss counts observed so far.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) get(ctx context.Context, key string) (*query.Result, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result query.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	return &result, true
}

func (c *QueryCache) set(ctx context.Context, key string, result *query.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// buildKey hashes the index fingerprint plus the sorted normalized terms:
// AND queries are commutative, so "side effects" and "effects side" share a
// key, while two builds over different corpora never do.
func (c *QueryCache) buildKey(terms []string) string {
	normalized := make([]string, 0, len(terms))
	for _, term := range terms {
		normalized = append(normalized, index.Normalize(term, true))
	}
	sort.Strings(normalized)
	hash := sha256.Sum256([]byte(c.fingerprint + "\x00" + strings.Join(normalized, ",")))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
