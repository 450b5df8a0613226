package weather

import (
	"context"

	"weatherbtc/internal/source"
)

// Provider abstracts one upstream weather source (e.g. OpenWeatherMap,
// WeatherAPI, wttr.in). A provider issues exactly one outbound call per
// Fetch; retrying means trying the next provider, not this one again.
type Provider interface {
	Name() string
	Descriptor() source.Descriptor
	Fetch(ctx context.Context, city string) (Reading, error)
}
