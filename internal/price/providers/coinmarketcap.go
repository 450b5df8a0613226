package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"weatherbtc/internal/price"
	"weatherbtc/internal/source"
)

// CoinMarketCapProvider implements price.Provider for the CoinMarketCap
// quotes API. An API key is mandatory; without one the provider fails fast
// and never spends network time.
type CoinMarketCapProvider struct {
	desc   source.Descriptor
	apiKey string
	caller *source.Caller
}

func NewCoinMarketCapProvider(client *http.Client, desc source.Descriptor, apiKey string) *CoinMarketCapProvider {
	return &CoinMarketCapProvider{
		desc:   desc,
		apiKey: apiKey,
		caller: source.NewCaller(desc.Name, client),
	}
}

func (p *CoinMarketCapProvider) Name() string {
	return p.desc.Name
}

func (p *CoinMarketCapProvider) Descriptor() source.Descriptor {
	return p.desc
}

// coinMarketCapPayload is the subset of the quotes/latest response we consume.
type coinMarketCapPayload struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data map[string]struct {
		Quote map[string]struct {
			Price *float64 `json:"price"`
		} `json:"quote"`
	} `json:"data"`
}

func (p *CoinMarketCapProvider) Fetch(ctx context.Context) (price.Quote, error) {
	if p.apiKey == "" {
		return price.Quote{}, source.Errf(p.desc.Name, source.KindAuthRequired, "coinmarketcap api key is not configured")
	}

	values := url.Values{}
	values.Set("symbol", price.AssetBTC)
	values.Set("convert", price.CurrencyUSD)

	header := http.Header{}
	header.Set("X-CMC_PRO_API_KEY", p.apiKey)
	header.Set("Accept", "application/json")

	var payload coinMarketCapPayload
	if serr := p.caller.GetJSON(ctx, fmt.Sprintf("%s?%s", p.desc.BaseURL, values.Encode()), header, &payload); serr != nil {
		return price.Quote{}, serr
	}

	return normalizeCoinMarketCap(p.desc.Name, payload, time.Now().UTC())
}

// normalizeCoinMarketCap maps a quotes/latest payload to a Quote. Pure.
func normalizeCoinMarketCap(src string, payload coinMarketCapPayload, now time.Time) (price.Quote, error) {
	if payload.Status.ErrorCode != 0 {
		return price.Quote{}, source.Errf(src, source.KindUpstreamError, "coinmarketcap error %d: %s", payload.Status.ErrorCode, payload.Status.ErrorMessage)
	}

	btc, ok := payload.Data[price.AssetBTC]
	if !ok {
		return price.Quote{}, source.Errf(src, source.KindParseError, "missing data.BTC")
	}
	usd, ok := btc.Quote[price.CurrencyUSD]
	if !ok || usd.Price == nil {
		return price.Quote{}, source.Errf(src, source.KindParseError, "missing data.BTC.quote.USD.price")
	}

	return price.Quote{
		Asset:     price.AssetBTC,
		Price:     decimal.NewFromFloat(*usd.Price),
		Currency:  price.CurrencyUSD,
		Source:    src,
		Timestamp: now,
	}, nil
}
