package weather

import (
	"context"
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
	log       zerolog.Logger
}

// NewAggregator creates an Aggregator over an ordered provider list.
func NewAggregator(providers []Provider, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		providers: providers,
		log:       log,
	}
}

// Result is a successful aggregation: one normalized reading plus the failed
// attempts that preceded it, for diagnostics.
type Result struct {
	Reading  Reading          `json:"weather"`
	Attempts []source.Attempt `json:"attempts"`
}

// Fetch runs the fallback loop for a city. The first provider that returns
// a normalized reading wins; a provider whose response cannot be normalized
// counts as a failed attempt like any other. When every provider fails the
// returned error is an *AllFailedError listing each attempt in order.
func (a *Aggregator) Fetch(ctx context.Context, city string) (Result, error) {
	if len(a.providers) == 0 {
		return Result{}, ErrNoProviders
	}

	attempts := make([]source.Attempt, 0, len(a.providers))

	for _, p := range a.providers {
		desc := p.Descriptor()

		attemptCtx, cancel := context.WithTimeout(ctx, desc.Deadline())
		start := time.Now()
		reading, err := p.Fetch(attemptCtx, city)
		cancel()
		elapsed := time.Since(start)

		if err != nil {
			at := source.AttemptFromError(desc.Name, err, elapsed)
			metrics.ObserveAttempt("weather", desc.Name, at.Kind.String(), elapsed)
			a.log.Warn().
				Str("source", desc.Name).
				Str("kind", at.Kind.String()).
				Str("city", city).
				Dur("elapsed", elapsed).
				Msg("weather source failed, trying next")
			attempts = append(attempts, at)
			continue
		}

		metrics.ObserveAttempt("weather", desc.Name, "success", elapsed)
		metrics.FallbackDepth.WithLabelValues("weather").Observe(float64(len(attempts)))
		return Result{Reading: reading, Attempts: attempts}, nil
	}

	return Result{}, &AllFailedError{Attempts: attempts}
}

// Providers returns the configured providers in priority order.
func (a *Aggregator) Providers() []Provider {
	return a.providers
}
