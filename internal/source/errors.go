package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sony/gobreaker"
)

// Kind classifies why a single source attempt failed.
type Kind string

const (
	// KindUnreachable covers network, DNS and connection failures,
	// including calls short-circuited by an open circuit breaker.
	KindUnreachable Kind = "unreachable"
	// KindTimeout means the attempt exceeded its per-source deadline.
	KindTimeout Kind = "timeout"
	// KindAuthRequired means the source needs an API key that is missing or invalid.
	KindAuthRequired Kind = "auth_required"
	// KindUpstreamError means the source answered with a non-success status
	// or reported an error in its response envelope.
	KindUpstreamError Kind = "upstream_error"
	// KindParseError means the response body did not match the expected shape.
	KindParseError Kind = "parse_error"
)

// Error is the failure outcome of one source attempt.
type Error struct {
	Source string
	Kind   Kind
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps a cause with its failure kind for a source.
func NewError(src string, kind Kind, err error) *Error {
	return &Error{Source: src, Kind: kind, Err: err}
}

// Errf builds an Error from a formatted message.
func Errf(src string, kind Kind, format string, args ...any) *Error {
	return &Error{Source: src, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Classify maps a transport-level error to the attempt taxonomy.
func Classify(src string, err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(src, KindTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return NewError(src, KindTimeout, err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return NewError(src, KindUnreachable, err)
	default:
		return NewError(src, KindUnreachable, err)
	}
}

// FromStatus maps a non-success HTTP status code to the attempt taxonomy.
func FromStatus(src string, code int) *Error {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return Errf(src, KindAuthRequired, "upstream rejected credentials (HTTP %d)", code)
	}
	return Errf(src, KindUpstreamError, "unexpected status code: %d", code)
}
