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

// CoinbaseProvider implements price.Provider for the Coinbase exchange-rates
// API. Rates are quoted as 1 BTC = X currency.
type CoinbaseProvider struct {
	desc   source.Descriptor
	caller *source.Caller
}

func NewCoinbaseProvider(client *http.Client, desc source.Descriptor) *CoinbaseProvider {
	return &CoinbaseProvider{
		desc:   desc,
		caller: source.NewCaller(desc.Name, client),
	}
}

func (p *CoinbaseProvider) Name() string {
	return p.desc.Name
}

func (p *CoinbaseProvider) Descriptor() source.Descriptor {
	return p.desc
}

// coinbasePayload is the subset of the exchange-rates response we consume.
type coinbasePayload struct {
	Data struct {
		Rates map[string]string `json:"rates"`
	} `json:"data"`
}

func (p *CoinbaseProvider) Fetch(ctx context.Context) (price.Quote, error) {
	values := url.Values{}
	values.Set("currency", price.AssetBTC)

	var payload coinbasePayload
	if serr := p.caller.GetJSON(ctx, fmt.Sprintf("%s?%s", p.desc.BaseURL, values.Encode()), nil, &payload); serr != nil {
		return price.Quote{}, serr
	}

	return normalizeCoinbase(p.desc.Name, payload, time.Now().UTC())
}

// normalizeCoinbase maps an exchange-rates payload to a Quote. Pure.
func normalizeCoinbase(src string, payload coinbasePayload, now time.Time) (price.Quote, error) {
	rate, ok := payload.Data.Rates[price.CurrencyUSD]
	if !ok {
		return price.Quote{}, source.Errf(src, source.KindParseError, "missing USD rate")
	}
	usd, err := decimal.NewFromString(rate)
	if err != nil {
		return price.Quote{}, source.Errf(src, source.KindParseError, "invalid USD rate %q", rate)
	}

	return price.Quote{
		Asset:     price.AssetBTC,
		Price:     usd,
		Currency:  price.CurrencyUSD,
		Source:    src,
		Timestamp: now,
	}, nil
}
