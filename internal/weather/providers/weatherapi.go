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

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com.
type WeatherAPIProvider struct {
	desc   source.Descriptor
	apiKey string
	caller *source.Caller
}

func NewWeatherAPIProvider(client *http.Client, desc source.Descriptor, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		desc:   desc,
		apiKey: apiKey,
		caller: source.NewCaller(desc.Name, client),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.desc.Name
}

func (p *WeatherAPIProvider) Descriptor() source.Descriptor {
	return p.desc
}

// weatherAPIPayload is the subset of the WeatherAPI.com response we consume.
type weatherAPIPayload struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		LastUpdatedEpoch int64    `json:"last_updated_epoch"`
		TempC            *float64 `json:"temp_c"`
		FeelsLikeC       *float64 `json:"feelslike_c"`
		Humidity         *float64 `json:"humidity"`
		WindKph          *float64 `json:"wind_kph"`
		Condition        struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, city string) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, source.Errf(p.desc.Name, source.KindAuthRequired, "weatherapi key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", city)
	values.Set("aqi", "no")

	var payload weatherAPIPayload
	if serr := p.caller.GetJSON(ctx, fmt.Sprintf("%s?%s", p.desc.BaseURL, values.Encode()), nil, &payload); serr != nil {
		return weather.Reading{}, serr
	}

	return normalizeWeatherAPI(p.desc.Name, city, payload, time.Now().UTC())
}

// normalizeWeatherAPI maps a WeatherAPI.com payload to a Reading. Wind is
// converted from km/h to m/s. Pure.
func normalizeWeatherAPI(src, city string, payload weatherAPIPayload, now time.Time) (weather.Reading, error) {
	if payload.Current.TempC == nil {
		return weather.Reading{}, source.Errf(src, source.KindParseError, "missing current.temp_c")
	}
	if payload.Current.Condition.Text == "" {
		return weather.Reading{}, source.Errf(src, source.KindParseError, "missing current.condition.text")
	}

	name := payload.Location.Name
	if name == "" {
		name = city
	}

	ts := now
	if payload.Current.LastUpdatedEpoch > 0 {
		ts = time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	}

	reading := weather.Reading{
		City:        name,
		Temperature: weather.Celsius(*payload.Current.TempC),
		Condition:   payload.Current.Condition.Text,
		Humidity:    payload.Current.Humidity,
		Source:      src,
		Timestamp:   ts,
	}
	if payload.Current.FeelsLikeC != nil {
		fl := weather.Celsius(*payload.Current.FeelsLikeC)
		reading.FeelsLike = &fl
	}
	if payload.Current.WindKph != nil {
		ms := *payload.Current.WindKph / 3.6
		reading.WindSpeed = &ms
	}

	return reading, nil
}
