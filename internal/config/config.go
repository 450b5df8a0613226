package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"weatherbtc/internal/source"
)

// AppConfig is the resolved process configuration. API keys are optional:
// an absent key is a fact the relevant provider turns into an immediate
// auth_required failure, never a crash.
type AppConfig struct {
	OpenWeatherAPIKey   string
	WeatherAPIKey       string
	CoinMarketCapAPIKey string

	Port string

	// HTTPTimeout caps the shared outbound client; per-source deadlines
	// are enforced separately by the aggregators.
	HTTPTimeout time.Duration

	// SourceTimeout is the per-attempt bound for sources whose descriptor
	// does not set one.
	SourceTimeout time.Duration

	ProbeInterval time.Duration
	ProbeCity     string

	LogLevel  string
	LogFormat string

	// Ordered source lists; order is the fallback priority order.
	WeatherSources []source.Descriptor
	PriceSources   []source.Descriptor
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults. A SOURCES_FILE override replaces the built-in
// source lists.
func Load() (*AppConfig, error) {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("SOURCE_TIMEOUT", "8s")
	v.SetDefault("PROBE_INTERVAL", "5m")
	v.SetDefault("PROBE_CITY", "London")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	cfg := &AppConfig{
		OpenWeatherAPIKey:   v.GetString("OPENWEATHER_API_KEY"),
		WeatherAPIKey:       v.GetString("WEATHERAPI_KEY"),
		CoinMarketCapAPIKey: v.GetString("COINMARKETCAP_API_KEY"),
		Port:                v.GetString("PORT"),
		HTTPTimeout:         v.GetDuration("HTTP_TIMEOUT"),
		SourceTimeout:       v.GetDuration("SOURCE_TIMEOUT"),
		ProbeInterval:       v.GetDuration("PROBE_INTERVAL"),
		ProbeCity:           v.GetString("PROBE_CITY"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
	}

	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT")
	}
	if cfg.ProbeInterval <= 0 {
		return nil, fmt.Errorf("invalid PROBE_INTERVAL")
	}

	weatherSources := source.DefaultWeather()
	priceSources := source.DefaultPrice()
	if path := v.GetString("SOURCES_FILE"); path != "" {
		f, err := source.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if len(f.Weather) > 0 {
			weatherSources = f.Weather
		}
		if len(f.Price) > 0 {
			priceSources = f.Price
		}
	}
	cfg.WeatherSources = applyDefaultTimeout(weatherSources, cfg.SourceTimeout)
	cfg.PriceSources = applyDefaultTimeout(priceSources, cfg.SourceTimeout)

	return cfg, nil
}

func applyDefaultTimeout(descs []source.Descriptor, def time.Duration) []source.Descriptor {
	out := make([]source.Descriptor, len(descs))
	for i, d := range descs {
		if d.Timeout == 0 && d.TimeoutSeconds == 0 {
			d.Timeout = def
		}
		out[i] = d
	}
	return out
}
