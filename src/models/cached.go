package models

import (
	"context"
	"os"
	"time"

	json "github.com/alpkeskin/gotoon"

	"github.com/lattice-agents/agentexec/src/cache"
)

// CachedProvider memoises decisions for identical requests. Useful for
// replayed workloads and for keeping demo runs off the metered APIs.
// When Path is set, the cache survives restarts.
type CachedProvider struct {
	inner Provider
	cache *cache.LRU
	path  string
}

var _ Provider = (*CachedProvider)(nil)

func NewCachedProvider(inner Provider, size int, ttl time.Duration, path string) *CachedProvider {
	p := &CachedProvider{
		inner: inner,
		cache: cache.NewLRU(size, ttl),
		path:  path,
	}
	if path != "" {
		p.load()
	}
	return p
}

func (p *CachedProvider) Decide(ctx context.Context, req Request) (Decision, error) {
	key := cache.Key(req.Model, buildDecisionPrompt(req))
	if v, ok := p.cache.Get(key); ok {
		if d, ok := v.(Decision); ok {
			return d, nil
		}
	}

	decision, err := p.inner.Decide(ctx, req)
	if err != nil {
		return Decision{}, err
	}
	p.cache.Set(key, decision)
	p.save()
	return decision, nil
}

type cachedDecision struct {
	Decision  Decision  `json:"decision"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (p *CachedProvider) load() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return
	}
	var dump map[string]cachedDecision
	if err := json.Unmarshal(data, &dump); err != nil {
		return
	}
	restored := make(map[string]cache.Entry, len(dump))
	for key, cd := range dump {
		restored[key] = cache.Entry{Value: cd.Decision, ExpiresAt: cd.ExpiresAt}
	}
	p.cache.Restore(restored)
}

func (p *CachedProvider) save() {
	if p.path == "" {
		return
	}
	src := p.cache.Dump()
	dump := make(map[string]cachedDecision, len(src))
	for key, entry := range src {
		d, ok := entry.Value.(Decision)
		if !ok {
			continue
		}
		dump[key] = cachedDecision{Decision: d, ExpiresAt: entry.ExpiresAt}
	}
	data, err := json.Marshal(dump)
	if err != nil {
		return
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, p.path)
}
