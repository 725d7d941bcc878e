package cache

import "sort"

// EvictionPolicy picks which entries leave when the cache is full.
type EvictionPolicy interface {
	Name() string
	// Victims returns up to n keys to remove. Caller holds the cache lock.
	Victims(entries map[string]*entry, n int) []string
}

// OldestComputation evicts the entries whose results were computed earliest.
// Stale-first eviction favors keeping the freshest analysis in memory.
type OldestComputation struct{}

func (OldestComputation) Name() string { return "computation" }

func (OldestComputation) Victims(entries map[string]*entry, n int) []string {
	return victimsBy(entries, n, func(a, b *entry) bool {
		return a.computedAt.Before(b.computedAt)
	})
}

// LeastRecentlyAccessed evicts the entries that have gone unread longest.
type LeastRecentlyAccessed struct{}

func (LeastRecentlyAccessed) Name() string { return "access" }

func (LeastRecentlyAccessed) Victims(entries map[string]*entry, n int) []string {
	return victimsBy(entries, n, func(a, b *entry) bool {
		return a.accessedAt.Before(b.accessedAt)
	})
}

// PolicyByName resolves a configured policy name, defaulting to
// computation-age eviction for unknown names.
func PolicyByName(name string) EvictionPolicy {
	switch name {
	case "access":
		return LeastRecentlyAccessed{}
	default:
		return OldestComputation{}
	}
}

func victimsBy(entries map[string]*entry, n int, less func(a, b *entry) bool) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return less(entries[keys[i]], entries[keys[j]])
	})
	if n > len(keys) {
		n = len(keys)
	}
	return keys[:n]
}
