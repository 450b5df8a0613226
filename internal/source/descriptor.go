package source

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds a single attempt when a descriptor does not set one.
const DefaultTimeout = 8 * time.Second

// Descriptor identifies one upstream source. Descriptors are defined at
// configuration time and never change at runtime. List order is the fallback
// priority order.
type Descriptor struct {
	Name        string `yaml:"name" json:"name"`
	BaseURL     string `yaml:"base_url" json:"base_url"`
	RequiresKey bool   `yaml:"requires_key" json:"requires_key"`
	// RequiresVPN marks sources whose network egress may be blocked in some
	// regions. Informational: the documented priority order is authoritative
	// and is not re-derived from this flag.
	RequiresVPN    bool `yaml:"requires_vpn" json:"requires_vpn"`
	TimeoutSeconds int  `yaml:"timeout" json:"timeout_seconds,omitempty"`

	// Timeout overrides TimeoutSeconds when set; used by tests that need
	// sub-second bounds.
	Timeout time.Duration `yaml:"-" json:"-"`
}

// Deadline returns the per-attempt timeout for this source.
func (d Descriptor) Deadline() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	if d.TimeoutSeconds > 0 {
		return time.Duration(d.TimeoutSeconds) * time.Second
	}
	return DefaultTimeout
}

// File is the on-disk shape of a sources override file.
type File struct {
	Weather []Descriptor `yaml:"weather"`
	Price   []Descriptor `yaml:"price"`
}

// LoadFile reads source descriptors from a YAML file. The order of each list
// is preserved as the fallback priority order.
func LoadFile(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read sources file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("parse sources file: %w", err)
	}

	for _, d := range append(append([]Descriptor{}, f.Weather...), f.Price...) {
		if d.Name == "" {
			return File{}, fmt.Errorf("sources file: descriptor without a name")
		}
		if d.BaseURL == "" {
			return File{}, fmt.Errorf("sources file: %s has no base_url", d.Name)
		}
	}

	return f, nil
}

// DefaultWeather returns the built-in weather source list in priority order:
// key-gated providers first, the keyless wttr.in fallback last.
func DefaultWeather() []Descriptor {
	return []Descriptor{
		{Name: "openweather", BaseURL: "https://api.openweathermap.org/data/2.5/weather", RequiresKey: true, TimeoutSeconds: 10},
		{Name: "weatherapi", BaseURL: "http://api.weatherapi.com/v1/current.json", RequiresKey: true, TimeoutSeconds: 10},
		{Name: "wttr.in", BaseURL: "https://wttr.in", TimeoutSeconds: 10},
	}
}

// DefaultPrice returns the built-in Bitcoin price source list in the order
// documented by the upstream service.
func DefaultPrice() []Descriptor {
	return []Descriptor{
		{Name: "nobitex", BaseURL: "https://apiv2.nobitex.ir/v3/orderbook/BTCUSDT", TimeoutSeconds: 8},
		{Name: "kraken", BaseURL: "https://api.kraken.com/0/public/Ticker", TimeoutSeconds: 8},
		{Name: "coinmarketcap", BaseURL: "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest", RequiresKey: true, RequiresVPN: true, TimeoutSeconds: 8},
		{Name: "binance", BaseURL: "https://api.binance.com/api/v3/ticker/price", RequiresVPN: true, TimeoutSeconds: 5},
		{Name: "coinbase", BaseURL: "https://api.coinbase.com/v2/exchange-rates", RequiresVPN: true, TimeoutSeconds: 8},
		{Name: "blockchain", BaseURL: "https://blockchain.info/ticker", TimeoutSeconds: 8},
	}
}
