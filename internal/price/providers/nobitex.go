package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"weatherbtc/internal/price"
	"weatherbtc/internal/source"
)

// NobitexProvider implements price.Provider for the Nobitex BTC/USDT
// orderbook. The price is the mid of best bid and best ask, falling back to
// the last trade price when the book is empty.
type NobitexProvider struct {
	desc   source.Descriptor
	caller *source.Caller
}

func NewNobitexProvider(client *http.Client, desc source.Descriptor) *NobitexProvider {
	return &NobitexProvider{
		desc:   desc,
		caller: source.NewCaller(desc.Name, client),
	}
}

func (p *NobitexProvider) Name() string {
	return p.desc.Name
}

func (p *NobitexProvider) Descriptor() source.Descriptor {
	return p.desc
}

// nobitexPayload is the subset of the Nobitex v3 orderbook response we
// consume. Prices arrive as strings.
type nobitexPayload struct {
	Status         string     `json:"status"`
	LastTradePrice string     `json:"lastTradePrice"`
	Bids           [][]string `json:"bids"`
	Asks           [][]string `json:"asks"`
}

func (p *NobitexProvider) Fetch(ctx context.Context) (price.Quote, error) {
	var payload nobitexPayload
	if serr := p.caller.GetJSON(ctx, p.desc.BaseURL, nil, &payload); serr != nil {
		return price.Quote{}, serr
	}

	return normalizeNobitex(p.desc.Name, payload, time.Now().UTC())
}

// normalizeNobitex maps a Nobitex orderbook payload to a Quote. Pure.
func normalizeNobitex(src string, payload nobitexPayload, now time.Time) (price.Quote, error) {
	if payload.Status != "ok" {
		return price.Quote{}, source.Errf(src, source.KindUpstreamError, "nobitex status %q", payload.Status)
	}

	bid, bidOK := topOfBook(payload.Bids)
	ask, askOK := topOfBook(payload.Asks)

	var mid decimal.Decimal
	switch {
	case bidOK && askOK:
		mid = bid.Add(ask).Div(decimal.NewFromInt(2))
	default:
		last, err := decimal.NewFromString(payload.LastTradePrice)
		if err != nil {
			return price.Quote{}, source.Errf(src, source.KindParseError, "empty orderbook and invalid lastTradePrice %q", payload.LastTradePrice)
		}
		mid = last
	}

	return price.Quote{
		Asset:     price.AssetBTC,
		Price:     mid,
		Currency:  price.CurrencyUSD,
		Source:    src,
		Timestamp: now,
	}, nil
}

// topOfBook returns the price of the best level, if any.
func topOfBook(levels [][]string) (decimal.Decimal, bool) {
	if len(levels) == 0 || len(levels[0]) == 0 {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(levels[0][0])
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
