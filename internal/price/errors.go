package price

import (
	"errors"
	"fmt"

	"weatherbtc/internal/source"
)

var (
	// ErrNoProviders is returned when an aggregator has no providers configured.
	ErrNoProviders = errors.New("no price providers configured")
	// ErrUnknownSource is returned when a caller names a source that is not configured.
	ErrUnknownSource = errors.New("unknown price source")
)

// AllFailedError reports that every configured provider failed for one
// request. Attempts are listed in priority order, one per provider.
type AllFailedError struct {
	Attempts []source.Attempt
}

func (e *AllFailedError) Error() string {
	return fmt.Sprintf("all %d price sources failed", len(e.Attempts))
}
