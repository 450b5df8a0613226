package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherbtc/internal/source"
)

const openWeatherFixture = `{
	"name": "Tehran",
	"dt": 1700000000,
	"main": {"temp": 21.0, "feels_like": 20.2, "humidity": 40},
	"wind": {"speed": 3.5},
	"weather": [{"main": "Clear", "description": "clear sky"}]
}`

func TestOpenWeatherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Tehran", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openWeatherFixture))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), source.Descriptor{Name: "openweather", BaseURL: srv.URL}, "test-key")

	reading, err := p.Fetch(context.Background(), "Tehran")
	require.NoError(t, err)

	assert.Equal(t, "Tehran", reading.City)
	assert.Equal(t, 21.0, reading.Temperature.Value)
	assert.Equal(t, "C", reading.Temperature.Unit)
	assert.Equal(t, "clear sky", reading.Condition)
	require.NotNil(t, reading.Humidity)
	assert.Equal(t, 40.0, *reading.Humidity)
	assert.Equal(t, "openweather", reading.Source)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), reading.Timestamp)
}

func TestOpenWeatherMissingKeySkipsNetworkCall(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(openWeatherFixture))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), source.Descriptor{Name: "openweather", BaseURL: srv.URL}, "")

	_, err := p.Fetch(context.Background(), "Tehran")
	require.Error(t, err)

	var se *source.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, source.KindAuthRequired, se.Kind)
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
}

func TestOpenWeatherInvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), source.Descriptor{Name: "openweather", BaseURL: srv.URL}, "bad-key")

	_, err := p.Fetch(context.Background(), "Tehran")
	var se *source.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, source.KindAuthRequired, se.Kind)
}

func TestNormalizeOpenWeatherIdempotent(t *testing.T) {
	var payload openWeatherPayload
	require.NoError(t, json.Unmarshal([]byte(openWeatherFixture), &payload))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first, err := normalizeOpenWeather("openweather", "Tehran", payload, now)
	require.NoError(t, err)
	second, err := normalizeOpenWeather("openweather", "Tehran", payload, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeOpenWeatherMissingFields(t *testing.T) {
	var payload openWeatherPayload
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Tehran"}`), &payload))

	_, err := normalizeOpenWeather("openweather", "Tehran", payload, time.Now().UTC())
	var se *source.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, source.KindParseError, se.Kind)
}
