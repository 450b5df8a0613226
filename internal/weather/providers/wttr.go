package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weatherbtc/internal/source"
	"weatherbtc/internal/weather"
)

// WttrProvider implements weather.Provider for wttr.in, the keyless fallback
// source. All numeric fields arrive as strings in the j1 format.
type WttrProvider struct {
	desc   source.Descriptor
	caller *source.Caller
}

func NewWttrProvider(client *http.Client, desc source.Descriptor) *WttrProvider {
	return &WttrProvider{
		desc:   desc,
		caller: source.NewCaller(desc.Name, client),
	}
}

func (p *WttrProvider) Name() string {
	return p.desc.Name
}

func (p *WttrProvider) Descriptor() source.Descriptor {
	return p.desc
}

// wttrPayload is the subset of the wttr.in j1 response we consume.
type wttrPayload struct {
	CurrentCondition []struct {
		TempC         string `json:"temp_C"`
		FeelsLikeC    string `json:"FeelsLikeC"`
		Humidity      string `json:"humidity"`
		WindspeedKmph string `json:"windspeedKmph"`
		WeatherDesc   []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

func (p *WttrProvider) Fetch(ctx context.Context, city string) (weather.Reading, error) {
	reqURL := fmt.Sprintf("%s/%s?format=j1", p.desc.BaseURL, url.PathEscape(city))

	var payload wttrPayload
	if serr := p.caller.GetJSON(ctx, reqURL, nil, &payload); serr != nil {
		return weather.Reading{}, serr
	}

	return normalizeWttr(p.desc.Name, city, payload, time.Now().UTC())
}

// normalizeWttr maps a wttr.in payload to a Reading. Pure.
func normalizeWttr(src, city string, payload wttrPayload, now time.Time) (weather.Reading, error) {
	if len(payload.CurrentCondition) == 0 {
		return weather.Reading{}, source.Errf(src, source.KindParseError, "missing current_condition")
	}
	current := payload.CurrentCondition[0]

	temp, err := strconv.ParseFloat(current.TempC, 64)
	if err != nil {
		return weather.Reading{}, source.Errf(src, source.KindParseError, "invalid temp_C %q", current.TempC)
	}
	if len(current.WeatherDesc) == 0 || current.WeatherDesc[0].Value == "" {
		return weather.Reading{}, source.Errf(src, source.KindParseError, "missing weatherDesc")
	}

	reading := weather.Reading{
		City:        city,
		Temperature: weather.Celsius(temp),
		Condition:   current.WeatherDesc[0].Value,
		Source:      src,
		Timestamp:   now,
	}
	if fl, err := strconv.ParseFloat(current.FeelsLikeC, 64); err == nil {
		t := weather.Celsius(fl)
		reading.FeelsLike = &t
	}
	if h, err := strconv.ParseFloat(current.Humidity, 64); err == nil {
		reading.Humidity = &h
	}
	if kmph, err := strconv.ParseFloat(current.WindspeedKmph, 64); err == nil {
		ms := kmph / 3.6
		reading.WindSpeed = &ms
	}

	return reading, nil
}
