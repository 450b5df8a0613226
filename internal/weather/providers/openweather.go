package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"weatherbtc/internal/source"
	"weatherbtc/internal/weather"
)

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
// An API key is required; without one the provider fails fast and never
// spends network time.
type OpenWeatherProvider struct {
	desc   source.Descriptor
	apiKey string
	caller *source.Caller
}

func NewOpenWeatherProvider(client *http.Client, desc source.Descriptor, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		desc:   desc,
		apiKey: apiKey,
		caller: source.NewCaller(desc.Name, client),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.desc.Name
}

func (p *OpenWeatherProvider) Descriptor() source.Descriptor {
	return p.desc
}

// openWeatherPayload is the subset of the OpenWeatherMap response we consume.
type openWeatherPayload struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, source.Errf(p.desc.Name, source.KindAuthRequired, "openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	var payload openWeatherPayload
	if serr := p.caller.GetJSON(ctx, fmt.Sprintf("%s?%s", p.desc.BaseURL, values.Encode()), nil, &payload); serr != nil {
		return weather.Reading{}, serr
	}

	return normalizeOpenWeather(p.desc.Name, city, payload, time.Now().UTC())
}

// normalizeOpenWeather maps an OpenWeatherMap payload to a Reading.
// Pure: identical payloads yield identical readings.
func normalizeOpenWeather(src, city string, payload openWeatherPayload, now time.Time) (weather.Reading, error) {
	if payload.Main.Temp == nil {
		return weather.Reading{}, source.Errf(src, source.KindParseError, "missing main.temp")
	}
	if len(payload.Weather) == 0 || payload.Weather[0].Description == "" {
		return weather.Reading{}, source.Errf(src, source.KindParseError, "missing weather description")
	}

	name := payload.Name
	if name == "" {
		name = city
	}

	ts := now
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	reading := weather.Reading{
		City:        name,
		Temperature: weather.Celsius(*payload.Main.Temp),
		Condition:   payload.Weather[0].Description,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Source:      src,
		Timestamp:   ts,
	}
	if payload.Main.FeelsLike != nil {
		fl := weather.Celsius(*payload.Main.FeelsLike)
		reading.FeelsLike = &fl
	}

	return reading, nil
}
