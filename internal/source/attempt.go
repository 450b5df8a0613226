package source

import (
	"errors"
	"time"
)

// Attempt records the outcome of one adapter invocation. A successful
// aggregation carries the normalized record separately; attempts listed
// alongside it are always failures.
type Attempt struct {
	Source    string `json:"source"`
	Kind      Kind   `json:"kind"`
	Message   string `json:"message,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// AttemptFromError builds an Attempt from a failed invocation. Errors that
// do not carry a Kind come from normalizers rejecting a decoded payload and
// count as parse errors.
func AttemptFromError(src string, err error, elapsed time.Duration) Attempt {
	var se *Error
	if !errors.As(err, &se) {
		se = NewError(src, KindParseError, err)
	}
	msg := se.Kind.String()
	if se.Err != nil {
		msg = se.Err.Error()
	}
	return Attempt{
		Source:    src,
		Kind:      se.Kind,
		Message:   msg,
		ElapsedMS: elapsed.Milliseconds(),
	}
}

func (k Kind) String() string {
	return string(k)
}
