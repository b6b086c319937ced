package application

import (
	"sort"
	"sync"
	"time"

	"github.com/bnema/arcprompt/internal/domain"
	"github.com/bnema/arcprompt/internal/ports"
)

type cacheEntry struct {
	prefs     domain.Preferences
	ctx       domain.DocumentContext
	result    domain.PromptHeaderResult
	createdAt time.Time
	seq       uint64
}

func (e *cacheEntry) matches(prefs domain.Preferences, ctx domain.DocumentContext) bool {
	return e.prefs.Tone == prefs.Tone &&
		e.prefs.Language == prefs.Language &&
		e.prefs.Genre == prefs.Genre &&
		e.ctx.Scene == ctx.Scene &&
		e.ctx.Arc == ctx.Arc &&
		e.ctx.CharacterName == ctx.CharacterName
}

type CacheStats struct {
	Size        int  `json:"size"`
	HasLastUsed bool `json:"has_last_used"`
	Hits        int  `json:"hits"`
	Misses      int  `json:"misses"`
}

// MemoCache memoizes header results by the caller's raw (preferences,
// context) tuple. The last used entry is checked before scanning the store.
//
// Eviction keeps the most recently created entries. A hit does not refresh
// an entry, so a hot entry that was created early is still evicted first.
type MemoCache struct {
	mu         sync.Mutex
	enabled    bool
	maxEntries int
	entries    []*cacheEntry
	last       *cacheEntry
	seq        uint64
	hits       int
	misses     int
	clock      ports.Clock
}

func NewMemoCache(enabled bool, maxEntries int, clock ports.Clock) *MemoCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxCacheEntries
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &MemoCache{enabled: enabled, maxEntries: maxEntries, clock: clock}
}

func (c *MemoCache) Lookup(prefs domain.Preferences, ctx domain.DocumentContext) (domain.PromptHeaderResult, bool) {
	if !c.enabled {
		return domain.PromptHeaderResult{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last != nil && c.last.matches(prefs, ctx) {
		c.hits++
		return c.last.result, true
	}

	for _, entry := range c.entries {
		if entry.matches(prefs, ctx) {
			c.last = entry
			c.hits++
			return entry.result, true
		}
	}

	c.misses++
	return domain.PromptHeaderResult{}, false
}

func (c *MemoCache) Store(prefs domain.Preferences, ctx domain.DocumentContext, result domain.PromptHeaderResult) {
	if !c.enabled {
		return
	}

	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	for _, entry := range c.entries {
		if entry.matches(prefs, ctx) {
			entry.result = result
			entry.createdAt = now
			entry.seq = c.seq
			c.last = entry
			return
		}
	}

	entry := &cacheEntry{prefs: prefs, ctx: ctx, result: result, createdAt: now, seq: c.seq}
	c.entries = append(c.entries, entry)
	c.last = entry

	if len(c.entries) > c.maxEntries {
		c.evictLocked()
	}
}

func (c *MemoCache) evictLocked() {
	sort.SliceStable(c.entries, func(i, j int) bool {
		left, right := c.entries[i], c.entries[j]
		if !left.createdAt.Equal(right.createdAt) {
			return left.createdAt.After(right.createdAt)
		}
		return left.seq > right.seq
	})

	for _, evicted := range c.entries[c.maxEntries:] {
		if evicted == c.last {
			c.last = nil
		}
	}

	kept := make([]*cacheEntry, c.maxEntries)
	copy(kept, c.entries[:c.maxEntries])
	c.entries = kept
}

func (c *MemoCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	c.last = nil
	c.hits = 0
	c.misses = 0
}

func (c *MemoCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Size:        len(c.entries),
		HasLastUsed: c.last != nil,
		Hits:        c.hits,
		Misses:      c.misses,
	}
}
