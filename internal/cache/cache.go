// Package cache provides a content-addressed result cache wrapping the
// pure drift computation. The engine itself stays stateless; callers that
// want memoization key results by (tenant_id, from_snapshot_id,
// to_snapshot_id) through this wrapper.
package cache

import (
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/driftscope/driftscope/pkg/types"
)

// ResultCache memoizes computed drift event sets. Keys are namespaced by
// tenant so one tenant's entries can never be addressed from another
// tenant's key space.
type ResultCache struct {
	lru    *lru.Cache[string, []types.DriftEvent]
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// NewResultCache creates an LRU-bounded result cache.
func NewResultCache(maxEntries int) (*ResultCache, error) {
	if maxEntries < 1 {
		maxEntries = 128
	}
	inner, err := lru.New[string, []types.DriftEvent](maxEntries)
	if err != nil {
		return nil, err
	}
	return &ResultCache{lru: inner}, nil
}

// Key builds the tenant-namespaced cache key for a snapshot pair. The
// raw identifiers are joined on a NUL byte: unlike a path-sanitized key,
// this keeps distinct tenant IDs distinct, so tenants whose IDs differ
// only in path-hostile characters can never address each other's entries.
func Key(tenantID types.TenantID, fromID, toID string) string {
	return strings.Join([]string{string(tenantID), fromID, toID}, "\x00")
}

// Get returns the cached event set for a snapshot pair, if present. The
// returned events are deep copies down to the state maps; mutating them
// cannot corrupt the cache.
func (c *ResultCache) Get(tenantID types.TenantID, fromID, toID string) ([]types.DriftEvent, bool) {
	events, ok := c.lru.Get(Key(tenantID, fromID, toID))
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return cloneEvents(events), true
}

// Add stores a deep copy of a computed event set, so later caller
// mutations of the stored slice cannot reach the cache either.
func (c *ResultCache) Add(tenantID types.TenantID, fromID, toID string, events []types.DriftEvent) {
	c.lru.Add(Key(tenantID, fromID, toID), cloneEvents(events))
}

// cloneEvents deep-copies an event slice down to the state payloads.
// Nil-ness of the states and the reference list is preserved, since it
// is part of the canonical content.
func cloneEvents(events []types.DriftEvent) []types.DriftEvent {
	out := make([]types.DriftEvent, len(events))
	copy(out, events)
	for i := range out {
		out[i].BeforeState = cloneState(out[i].BeforeState)
		out[i].AfterState = cloneState(out[i].AfterState)
		if out[i].MissingDataReference != nil {
			out[i].MissingDataReference = append([]string{}, out[i].MissingDataReference...)
		}
	}
	return out
}

func cloneState(state map[string]interface{}) map[string]interface{} {
	if state == nil {
		return nil
	}
	out := make(map[string]interface{}, len(state))
	for k, v := range state {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneState(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i := range val {
			out[i] = cloneValue(val[i])
		}
		return out
	default:
		return v
	}
}

// Purge drops every entry.
func (c *ResultCache) Purge() {
	c.lru.Purge()
}

// Stats returns current counters.
func (c *ResultCache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.lru.Len(),
	}
}
