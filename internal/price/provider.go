package price

import (
	"context"

	"weatherbtc/internal/source"
)

// Provider abstracts one upstream Bitcoin price source. The pair is fixed
// (BTC/USD), so Fetch takes no domain parameters. One outbound call per
// Fetch; retrying means trying the next provider.
type Provider interface {
	Name() string
	Descriptor() source.Descriptor
	Fetch(ctx context.Context) (Quote, error)
}
