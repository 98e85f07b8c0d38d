package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/reviewinsights/internal/observability"
)

// RateLimiter throttles calls sharing a key
type RateLimiter interface {
	Wait(ctx context.Context, key string) error
}

// InstrumentedGenerator records metrics and debug logs for every call and
// optionally waits on a rate limiter first
type InstrumentedGenerator struct {
	next    Generator
	name    string
	limiter RateLimiter
	log     zerolog.Logger
}

// NewInstrumentedGenerator wraps next; limiter may be nil
func NewInstrumentedGenerator(next Generator, name string, limiter RateLimiter, logger zerolog.Logger) *InstrumentedGenerator {
	return &InstrumentedGenerator{
		next:    next,
		name:    name,
		limiter: limiter,
		log:     logger,
	}
}

// Generate forwards the request
func (g *InstrumentedGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, g.name); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := g.next.Generate(ctx, req)
	dur := time.Since(start)
	observability.ObserveLLM(g.name, err, dur)

	if err != nil {
		g.log.Debug().Err(err).Str("provider", g.name).Dur("took", dur).Msg("llm call failed")
		return nil, err
	}
	g.log.Debug().
		Str("provider", g.name).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Dur("took", dur).
		Msg("llm call")
	return resp, nil
}
