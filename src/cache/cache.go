// Package cache provides a small LRU with per-entry TTL, used to memoise
// provider decisions for repeated prompts.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Entry is a cached value with its expiry, exported so callers can dump
// and restore cache contents across restarts.
type Entry struct {
	Value     any       `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

type node struct {
	key   string
	entry Entry
}

// LRU is a thread-safe fixed-capacity cache. Reads refresh recency;
// expired entries are dropped lazily on access.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 128
	}
	return &LRU{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *LRU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	n := elem.Value.(*node)
	if time.Now().After(n.entry.ExpiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return n.entry.Value, true
}

func (c *LRU) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{Value: value, ExpiresAt: time.Now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*node).entry = entry
		return
	}
	c.items[key] = c.order.PushFront(&node{key: key, entry: entry})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*node).key)
		}
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

// Dump snapshots the live entries for persistence.
func (c *LRU) Dump() map[string]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	out := make(map[string]Entry, len(c.items))
	for key, elem := range c.items {
		entry := elem.Value.(*node).entry
		if now.After(entry.ExpiresAt) {
			continue
		}
		out[key] = entry
	}
	return out
}

// Restore loads previously dumped entries, skipping expired ones. Keys
// already present are updated in place so a warm cache never grows a
// second list element for the same key.
func (c *LRU) Restore(dump map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range dump {
		if now.After(entry.ExpiresAt) {
			continue
		}
		if elem, ok := c.items[key]; ok {
			c.order.MoveToFront(elem)
			elem.Value.(*node).entry = entry
			continue
		}
		c.items[key] = c.order.PushFront(&node{key: key, entry: entry})
		if c.order.Len() > c.capacity {
			oldest := c.order.Back()
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*node).key)
		}
	}
}

// Key derives a stable cache key from the given parts.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(h[:])
}
