// Package probe periodically checks every configured upstream source and
// keeps the latest outcome in an in-memory registry.
package probe

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"weatherbtc/internal/metrics"
	"weatherbtc/internal/price"
	"weatherbtc/internal/source"
	"weatherbtc/internal/weather"
)

// Prober drives scheduled health checks. Weather providers are probed with
// a fixed probe city; price providers with a normal quote fetch. Probe runs
// are independent of inbound request aggregation.
type Prober struct {
	scheduler *gocron.Scheduler
	registry  *Registry
	weather   []weather.Provider
	price     []price.Provider
	city      string
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a Prober over the configured providers.
func New(registry *Registry, weatherProviders []weather.Provider, priceProviders []price.Provider, city string, interval time.Duration, log zerolog.Logger) *Prober {
	return &Prober{
		scheduler: gocron.NewScheduler(time.UTC),
		registry:  registry,
		weather:   weatherProviders,
		price:     priceProviders,
		city:      city,
		interval:  interval,
		log:       log,
	}
}

// Start runs one immediate probe pass and schedules the periodic job.
func (p *Prober) Start() error {
	if len(p.weather) == 0 && len(p.price) == 0 {
		p.log.Info().Msg("prober: no sources configured; nothing to schedule")
		return nil
	}

	if _, err := p.scheduler.Every(p.interval).Do(p.RunOnce); err != nil {
		return err
	}

	p.scheduler.StartAsync()
	go p.RunOnce()
	return nil
}

// Stop stops the scheduler and cancels future probe runs.
func (p *Prober) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

// RunOnce probes every source sequentially and records each outcome.
func (p *Prober) RunOnce() {
	p.log.Debug().Msg("prober: running source health checks")

	for _, wp := range p.weather {
		desc := wp.Descriptor()
		elapsed, err := p.timed(desc, func(ctx context.Context) error {
			_, fetchErr := wp.Fetch(ctx, p.city)
			return fetchErr
		})
		p.record("weather", desc.Name, elapsed, err)
	}

	for _, pp := range p.price {
		desc := pp.Descriptor()
		elapsed, err := p.timed(desc, func(ctx context.Context) error {
			_, fetchErr := pp.Fetch(ctx)
			return fetchErr
		})
		p.record("price", desc.Name, elapsed, err)
	}
}

func (p *Prober) timed(desc source.Descriptor, fn func(context.Context) error) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), desc.Deadline())
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	return time.Since(start), err
}

func (p *Prober) record(domain, src string, elapsed time.Duration, err error) {
	st := Status{
		Source:    src,
		Domain:    domain,
		Healthy:   err == nil,
		ElapsedMS: elapsed.Milliseconds(),
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		at := source.AttemptFromError(src, err, elapsed)
		st.Kind = at.Kind
		st.Message = at.Message
		p.log.Warn().
			Str("domain", domain).
			Str("source", src).
			Str("kind", at.Kind.String()).
			Msg("probe: source unhealthy")
	}

	p.registry.Set(st)
	metrics.SetSourceHealth(domain, src, st.Healthy)
}
