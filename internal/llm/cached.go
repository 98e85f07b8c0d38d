package llm

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/reviewinsights/internal/cache"
	"github.com/ppiankov/reviewinsights/internal/observability"
)

// CachedGenerator memoizes completions keyed by prompt and sampling options.
// Prompts are keyed in NFC form, so canonically equivalent text shares an
// entry. Only successful responses are stored.
type CachedGenerator struct {
	next      Generator
	cache     cache.Cache
	ttl       time.Duration
	namespace string
}

// NewCachedGenerator wraps next; namespace separates providers sharing one cache
func NewCachedGenerator(next Generator, c cache.Cache, ttl time.Duration, namespace string) *CachedGenerator {
	return &CachedGenerator{
		next:      next,
		cache:     c,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Generate returns a cached response when one exists
func (g *CachedGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	key := requestKey(g.namespace, req)

	if data, ok := g.cache.Get(ctx, key); ok {
		var resp GenerateResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			observability.ObserveCache("llm", "hit")
			return &resp, nil
		}
	}
	observability.ObserveCache("llm", "miss")

	resp, err := g.next.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := g.cache.Set(ctx, key, data, g.ttl); err != nil {
			observability.ObserveCache("llm", "error")
		} else {
			observability.ObserveCache("llm", "set")
		}
	}
	return resp, nil
}

func requestKey(namespace string, req GenerateRequest) string {
	return cache.Key(
		namespace,
		req.Model,
		norm.NFC.String(req.Prompt),
		strconv.FormatFloat(req.Temperature, 'f', -1, 64),
		strconv.FormatFloat(req.TopP, 'f', -1, 64),
		strconv.Itoa(req.MaxTokens),
	)
}
