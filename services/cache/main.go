// Package cache memoizes aggregation results per (dataset, variant key).
// Entries are never invalidated explicitly, only by expiry.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"varbrowser/api/models/constants"
	"varbrowser/api/services/aggregation"
)

const DefaultTTL = time.Hour

// ResultCache must be safe for concurrent use. Concurrent misses for the
// same key may both recompute and overwrite each other.
type ResultCache interface {
	Get(ds constants.Dataset, key string) (aggregation.Result, bool)
	Put(ds constants.Dataset, key string, result aggregation.Result, ttl time.Duration)
}

// Key builds the namespaced cache key, e.g. "shortread_patients_data:chr1_100_A_T".
func Key(ds constants.Dataset, key string) string {
	return fmt.Sprintf("%s_patients_data:%s", ds, key)
}

// MemoryCache is an in-process ResultCache bounded by entry count.
type MemoryCache struct {
	entries *ristretto.Cache[string, aggregation.Result]
}

var _ ResultCache = (*MemoryCache)(nil)

func NewMemoryCache(maxEntries int64) (*MemoryCache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", maxEntries)
	}

	entries, err := ristretto.NewCache(&ristretto.Config[string, aggregation.Result]{
		// ~10x the number of items expected when full
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	return &MemoryCache{entries: entries}, nil
}

func (c *MemoryCache) Get(ds constants.Dataset, key string) (aggregation.Result, bool) {
	return c.entries.Get(Key(ds, key))
}

// Put stores the result with cost 1. A non-positive ttl means DefaultTTL.
// The write is visible to Get once Put returns.
func (c *MemoryCache) Put(ds constants.Dataset, key string, result aggregation.Result, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.entries.SetWithTTL(Key(ds, key), result, 1, ttl)
	c.entries.Wait()
}

func (c *MemoryCache) Close() {
	c.entries.Close()
}
