// Package cache holds computed scoring results for their freshness window so
// repeat lookups skip the full analysis pipeline.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

type entry struct {
	result     *model.ConditionalOpportunityScore
	computedAt time.Time
	accessedAt time.Time
}

// ScoreCache is a TTL- and capacity-bounded store for scoring results.
// Freshness is measured from computation time, not insertion time, so a
// result computed long ago cannot re-enter as fresh.
type ScoreCache struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	ttl      time.Duration
	capacity int
	fraction float64
	policy   EvictionPolicy

	hits      int64
	misses    int64
	evictions int64
	now       func() time.Time
}

// Option adjusts cache construction.
type Option func(*ScoreCache)

// WithClock overrides the time source. Tests use it to step through TTLs.
func WithClock(now func() time.Time) Option {
	return func(c *ScoreCache) { c.now = now }
}

// WithPolicy swaps the eviction policy.
func WithPolicy(p EvictionPolicy) Option {
	return func(c *ScoreCache) { c.policy = p }
}

// New creates a ScoreCache. evictFraction is the share of capacity removed
// in one eviction pass.
func New(ttl time.Duration, capacity int, evictFraction float64, opts ...Option) *ScoreCache {
	c := &ScoreCache{
		entries:  make(map[string]*entry),
		ttl:      ttl,
		capacity: capacity,
		fraction: evictFraction,
		policy:   OldestComputation{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a cached result when present and still fresh. Expired entries
// are removed on contact.
func (c *ScoreCache) Get(key string) (*model.ConditionalOpportunityScore, bool) {
	return c.lookup(key, true)
}

// Peek is Get without miss accounting. Probes that precede a scoring
// decision use it so one computation is not recorded as several misses.
func (c *ScoreCache) Peek(key string) (*model.ConditionalOpportunityScore, bool) {
	return c.lookup(key, false)
}

func (c *ScoreCache) lookup(key string, countMiss bool) (*model.ConditionalOpportunityScore, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		if countMiss {
			c.misses++
		}
		return nil, false
	}
	if c.now().Sub(e.computedAt) > c.ttl {
		delete(c.entries, key)
		if countMiss {
			c.misses++
		}
		return nil, false
	}
	e.accessedAt = c.now()
	c.hits++
	return e.result, true
}

// Put stores a result under its key, evicting in bulk when full. Results
// already past their TTL are not admitted.
func (c *ScoreCache) Put(key string, result *model.ConditionalOpportunityScore) {
	c.mu.Lock()
	defer c.mu.Unlock()

	computedAt := result.LastUpdated
	if computedAt.IsZero() {
		computedAt = c.now()
	}
	if c.now().Sub(computedAt) > c.ttl {
		return
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evict()
	}
	c.entries[key] = &entry{result: result, computedAt: computedAt, accessedAt: c.now()}
}

// evict removes a batch of victims chosen by the policy. Caller holds the lock.
func (c *ScoreCache) evict() {
	n := int(float64(c.capacity) * c.fraction)
	if n < 1 {
		n = 1
	}
	victims := c.policy.Victims(c.entries, n)
	for _, key := range victims {
		delete(c.entries, key)
	}
	c.evictions += int64(len(victims))
	zap.L().Debug("cache: bulk eviction",
		zap.String("policy", c.policy.Name()),
		zap.Int("evicted", len(victims)),
		zap.Int("remaining", len(c.entries)),
	)
}

// PurgeAll drops every entry. Counters are kept.
func (c *ScoreCache) PurgeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len reports the current entry count.
func (c *ScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats snapshots hit, miss and eviction counters.
func (c *ScoreCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		Size:      len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// BuildKey derives a stable cache key from the cell and the scoring context.
// Fields are sorted before hashing so key construction is order-independent.
func BuildKey(cellID string, fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, "&")))
	return cellID + ":" + hex.EncodeToString(sum[:])[:16]
}
