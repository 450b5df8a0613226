package price

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"weatherbtc/internal/metrics"
	"weatherbtc/internal/source"
)

// Aggregator tries providers sequentially in priority order until one
// succeeds. Worst-case latency for a request is the sum of the per-provider
// deadlines, reached only when every source is unreachable.
type Aggregator struct {
	providers []Provider
	byName    map[string]Provider
	log       zerolog.Logger
}

// NewAggregator creates an Aggregator over an ordered provider list.
func NewAggregator(providers []Provider, log zerolog.Logger) *Aggregator {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Aggregator{
		providers: providers,
		byName:    byName,
		log:       log,
	}
}

// Result is a successful aggregation: one normalized quote plus the failed
// attempts that preceded it, for diagnostics.
type Result struct {
	Quote    Quote            `json:"bitcoin"`
	Attempts []source.Attempt `json:"attempts"`
}

// Fetch runs the fallback loop. The first provider that returns a normalized
// quote wins; a provider whose response cannot be normalized counts as a
// failed attempt like any other. When every provider fails the returned
// error is an *AllFailedError listing each attempt in order.
func (a *Aggregator) Fetch(ctx context.Context) (Result, error) {
	if len(a.providers) == 0 {
		return Result{}, ErrNoProviders
	}

	attempts := make([]source.Attempt, 0, len(a.providers))

	for _, p := range a.providers {
		quote, at, ok := a.attempt(ctx, p)
		if !ok {
			attempts = append(attempts, at)
			continue
		}
		metrics.FallbackDepth.WithLabelValues("price").Observe(float64(len(attempts)))
		return Result{Quote: quote, Attempts: attempts}, nil
	}

	return Result{}, &AllFailedError{Attempts: attempts}
}

// SourceResult is one per-source outcome of a fan-out fetch.
type SourceResult struct {
	Source  string          `json:"source"`
	Quote   *Quote          `json:"quote,omitempty"`
	Failure *source.Attempt `json:"failure,omitempty"`
}

// FetchAll queries every configured provider concurrently and reports each
// outcome, in priority order. Unlike Fetch, partial failure is part of the
// normal result here, not an error.
func (a *Aggregator) FetchAll(ctx context.Context) []SourceResult {
	results := make([]SourceResult, len(a.providers))

	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			quote, at, ok := a.attempt(ctx, p)
			if !ok {
				results[i] = SourceResult{Source: p.Name(), Failure: &at}
				return
			}
			results[i] = SourceResult{Source: p.Name(), Quote: &quote}
		}(i, p)
	}
	wg.Wait()

	return results
}

// FetchFrom queries a single provider by name.
func (a *Aggregator) FetchFrom(ctx context.Context, name string) (Quote, error) {
	p, ok := a.byName[name]
	if !ok {
		return Quote{}, ErrUnknownSource
	}

	quote, at, success := a.attempt(ctx, p)
	if !success {
		return Quote{}, source.Errf(at.Source, at.Kind, "%s", at.Message)
	}
	return quote, nil
}

// SourceNames returns the configured source names in priority order.
func (a *Aggregator) SourceNames() []string {
	names := make([]string, 0, len(a.providers))
	for _, p := range a.providers {
		names = append(names, p.Name())
	}
	return names
}

// Providers returns the configured providers in priority order.
func (a *Aggregator) Providers() []Provider {
	return a.providers
}

// attempt invokes one provider with its deadline and records metrics.
func (a *Aggregator) attempt(ctx context.Context, p Provider) (Quote, source.Attempt, bool) {
	desc := p.Descriptor()

	attemptCtx, cancel := context.WithTimeout(ctx, desc.Deadline())
	start := time.Now()
	quote, err := p.Fetch(attemptCtx)
	cancel()
	elapsed := time.Since(start)

	if err != nil {
		at := source.AttemptFromError(desc.Name, err, elapsed)
		metrics.ObserveAttempt("price", desc.Name, at.Kind.String(), elapsed)
		a.log.Warn().
			Str("source", desc.Name).
			Str("kind", at.Kind.String()).
			Dur("elapsed", elapsed).
			Msg("price source failed")
		return Quote{}, at, false
	}

	metrics.ObserveAttempt("price", desc.Name, "success", elapsed)
	return quote, source.Attempt{}, true
}
