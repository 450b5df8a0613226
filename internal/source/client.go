package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Caller issues outbound calls for one source through a circuit breaker.
// There are no per-source retries: a failed attempt means the aggregator
// moves on to the next source.
type Caller struct {
	source  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewCaller creates a Caller for a source sharing the given HTTP client.
func NewCaller(src string, client *http.Client) *Caller {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        src,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Caller{
		source:  src,
		client:  client,
		breaker: cb,
	}
}

// GetJSON issues a single GET and decodes a 2xx body into out. Any failure
// is returned classified against the attempt taxonomy.
func (c *Caller) GetJSON(ctx context.Context, url string, header http.Header, out any) *Error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewError(c.source, KindUnreachable, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, FromStatus(c.source, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return se
		}
		return Classify(c.source, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return Errf(c.source, KindUnreachable, "unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewError(c.source, KindParseError, err)
	}
	return nil
}
