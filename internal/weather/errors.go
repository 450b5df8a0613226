package weather

import (
	"errors"
	"fmt"

	"weatherbtc/internal/source"
)

// ErrNoProviders is returned when an aggregator has no providers configured.
var ErrNoProviders = errors.New("no weather providers configured")

// AllFailedError reports that every configured provider failed for one
// request. Attempts are listed in priority order, one per provider.
type AllFailedError struct {
	Attempts []source.Attempt
}

func (e *AllFailedError) Error() string {
	return fmt.Sprintf("all %d weather sources failed", len(e.Attempts))
}
