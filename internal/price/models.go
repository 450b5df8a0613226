package price

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// AssetBTC is the only asset the service quotes.
	AssetBTC = "BTC"
	// CurrencyUSD tags every normalized price. USDT-quoted sources are
	// treated as USD, as the upstream service did.
	CurrencyUSD = "USD"
)

// Quote is the normalized Bitcoin price view produced by any provider.
type Quote struct {
	Asset     string          `json:"asset"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"` // always UTC
}
