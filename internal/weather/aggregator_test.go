package weather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherbtc/internal/source"
	"weatherbtc/internal/weather"
	"weatherbtc/internal/weather/providers"
)

type stubProvider struct {
	desc    source.Descriptor
	reading weather.Reading
	err     error
	calls   int
}

func (s *stubProvider) Name() string                  { return s.desc.Name }
func (s *stubProvider) Descriptor() source.Descriptor { return s.desc }

func (s *stubProvider) Fetch(_ context.Context, _ string) (weather.Reading, error) {
	s.calls++
	if s.err != nil {
		return weather.Reading{}, s.err
	}
	return s.reading, nil
}

func newStub(name string, err error) *stubProvider {
	return &stubProvider{
		desc: source.Descriptor{Name: name, Timeout: time.Second},
		reading: weather.Reading{
			City:        "London",
			Temperature: weather.Celsius(18),
			Condition:   "Clear",
			Source:      name,
		},
		err: err,
	}
}

func TestFetchFirstSuccessWins(t *testing.T) {
	first := newStub("openweather", source.Errf("openweather", source.KindUpstreamError, "HTTP 500"))
	second := newStub("weatherapi", nil)
	third := newStub("wttr.in", nil)

	agg := weather.NewAggregator([]weather.Provider{first, second, third}, zerolog.Nop())

	res, err := agg.Fetch(context.Background(), "London")
	require.NoError(t, err)

	assert.Equal(t, "weatherapi", res.Reading.Source)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, source.KindUpstreamError, res.Attempts[0].Kind)
	// Sources after the first success are never tried.
	assert.Equal(t, 0, third.calls)
}

func TestFetchAllFailed(t *testing.T) {
	provs := []weather.Provider{
		newStub("openweather", source.Errf("openweather", source.KindAuthRequired, "no key")),
		newStub("weatherapi", source.Errf("weatherapi", source.KindTimeout, "deadline")),
		newStub("wttr.in", source.Errf("wttr.in", source.KindUnreachable, "refused")),
	}

	agg := weather.NewAggregator(provs, zerolog.Nop())

	_, err := agg.Fetch(context.Background(), "London")
	require.Error(t, err)

	var af *weather.AllFailedError
	require.ErrorAs(t, err, &af)
	require.Len(t, af.Attempts, len(provs))
	assert.Equal(t, "openweather", af.Attempts[0].Source)
	assert.Equal(t, "weatherapi", af.Attempts[1].Source)
	assert.Equal(t, "wttr.in", af.Attempts[2].Source)
	assert.Equal(t, source.KindAuthRequired, af.Attempts[0].Kind)
	assert.Equal(t, source.KindTimeout, af.Attempts[1].Kind)
	assert.Equal(t, source.KindUnreachable, af.Attempts[2].Kind)
}

func TestFetchNoProviders(t *testing.T) {
	agg := weather.NewAggregator(nil, zerolog.Nop())

	_, err := agg.Fetch(context.Background(), "London")
	require.ErrorIs(t, err, weather.ErrNoProviders)
}

// Missing OpenWeather key falls through to the keyless wttr.in source
// without spending any of the timeout budget on a network call.
func TestFetchKeylessFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"current_condition": [{
				"temp_C": "21",
				"weatherDesc": [{"value": "Clear"}]
			}]
		}`))
	}))
	defer srv.Close()

	openWeather := providers.NewOpenWeatherProvider(srv.Client(), source.Descriptor{Name: "openweather", BaseURL: "http://127.0.0.1:0"}, "")
	wttr := providers.NewWttrProvider(srv.Client(), source.Descriptor{Name: "wttr.in", BaseURL: srv.URL})

	agg := weather.NewAggregator([]weather.Provider{openWeather, wttr}, zerolog.Nop())

	res, err := agg.Fetch(context.Background(), "London")
	require.NoError(t, err)

	assert.Equal(t, "wttr.in", res.Reading.Source)
	assert.Equal(t, 21.0, res.Reading.Temperature.Value)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, "openweather", res.Attempts[0].Source)
	assert.Equal(t, source.KindAuthRequired, res.Attempts[0].Kind)
}

// A source that exceeds its deadline is cut off at the bound and the
// aggregator moves on instead of waiting for the slow response.
func TestFetchTimeoutEnforced(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	slowProvider := providers.NewWttrProvider(slow.Client(), source.Descriptor{Name: "wttr.in", BaseURL: slow.URL, Timeout: 50 * time.Millisecond})
	backup := newStub("weatherapi", nil)

	agg := weather.NewAggregator([]weather.Provider{slowProvider, backup}, zerolog.Nop())

	start := time.Now()
	res, err := agg.Fetch(context.Background(), "London")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "weatherapi", res.Reading.Source)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, source.KindTimeout, res.Attempts[0].Kind)
	assert.Less(t, elapsed, time.Second, "aggregator must not wait past the per-source bound")
}
