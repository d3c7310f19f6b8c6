package service

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
)

// profileAliases are the parenthetical aliases stripped when normalizing a
// drug display name back to its knowledge-base key. This set is the
// complete contract; adding an alias is a knowledge-base schema change.
var profileAliases = []string{"(5-fu)"}

// DrugKeyResolver normalizes free-text drug names into knowledge-base
// lookup keys, with a small in-memory LRU cache in front of the string
// work for hot request paths.
type DrugKeyResolver struct {
	logger *logrus.Logger
	cache  *lru.Cache

	statsMu sync.RWMutex
	stats   ResolverStats
}

// ResolverStats represents cache performance counters for the resolver.
type ResolverStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewDrugKeyResolver creates a resolver with the given cache capacity.
func NewDrugKeyResolver(logger *logrus.Logger, cacheSize int) (*DrugKeyResolver, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &DrugKeyResolver{logger: logger, cache: cache}, nil
}

// Key converts a requested drug name into the knowledge-base key: trimmed
// and case-folded.
func (r *DrugKeyResolver) Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ProfileKey converts a drug display name back into its knowledge-base key
// for detected-variant re-resolution: case-folded, spaces removed, and
// known parenthetical aliases stripped.
func (r *DrugKeyResolver) ProfileKey(displayName string) string {
	if cached, ok := r.cache.Get(displayName); ok {
		r.recordHit()
		return cached.(string)
	}

	key := strings.ReplaceAll(strings.ToLower(displayName), " ", "")
	for _, alias := range profileAliases {
		key = strings.ReplaceAll(key, alias, "")
	}

	r.cache.Add(displayName, key)
	r.recordMiss()
	return key
}

// Stats returns a snapshot of the cache counters.
func (r *DrugKeyResolver) Stats() ResolverStats {
	r.statsMu.RLock()
	defer r.statsMu.RUnlock()
	return r.stats
}

func (r *DrugKeyResolver) recordHit() {
	r.statsMu.Lock()
	r.stats.Hits++
	r.statsMu.Unlock()
}

func (r *DrugKeyResolver) recordMiss() {
	r.statsMu.Lock()
	r.stats.Misses++
	r.statsMu.Unlock()
}
