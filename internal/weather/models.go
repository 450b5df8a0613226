package weather

import "time"

// UnitCelsius tags every normalized temperature. Sources reporting other
// units are converted during normalization.
const UnitCelsius = "C"

// Temperature is a unit-tagged temperature value.
type Temperature struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Celsius builds a Temperature in the canonical unit.
func Celsius(v float64) Temperature {
	return Temperature{Value: v, Unit: UnitCelsius}
}

// Reading is the normalized current-weather view produced by any provider.
// Callers never need to know which source answered.
type Reading struct {
	City        string       `json:"city"`
	Temperature Temperature  `json:"temperature"`
	FeelsLike   *Temperature `json:"feels_like,omitempty"`
	Condition   string       `json:"condition"`
	Humidity    *float64     `json:"humidity_percent,omitempty"`
	WindSpeed   *float64     `json:"wind_speed_ms,omitempty"`
	Source      string       `json:"source"`
	Timestamp   time.Time    `json:"timestamp"` // always UTC
}
