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

const binanceSymbol = "BTCUSDT"

// BinanceProvider implements price.Provider for the Binance spot ticker.
type BinanceProvider struct {
	desc   source.Descriptor
	caller *source.Caller
}

func NewBinanceProvider(client *http.Client, desc source.Descriptor) *BinanceProvider {
	return &BinanceProvider{
		desc:   desc,
		caller: source.NewCaller(desc.Name, client),
	}
}

func (p *BinanceProvider) Name() string {
	return p.desc.Name
}

func (p *BinanceProvider) Descriptor() source.Descriptor {
	return p.desc
}

// binancePayload is the ticker/price response.
type binancePayload struct {
	Price string `json:"price"`
}

func (p *BinanceProvider) Fetch(ctx context.Context) (price.Quote, error) {
	values := url.Values{}
	values.Set("symbol", binanceSymbol)

	var payload binancePayload
	if serr := p.caller.GetJSON(ctx, fmt.Sprintf("%s?%s", p.desc.BaseURL, values.Encode()), nil, &payload); serr != nil {
		return price.Quote{}, serr
	}

	return normalizeBinance(p.desc.Name, payload, time.Now().UTC())
}

// normalizeBinance maps a Binance ticker payload to a Quote. Pure.
func normalizeBinance(src string, payload binancePayload, now time.Time) (price.Quote, error) {
	last, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return price.Quote{}, source.Errf(src, source.KindParseError, "invalid price %q", payload.Price)
	}

	return price.Quote{
		Asset:     price.AssetBTC,
		Price:     last,
		Currency:  price.CurrencyUSD,
		Source:    src,
		Timestamp: now,
	}, nil
}
