package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"weatherbtc/internal/price"
	"weatherbtc/internal/source"
)

const krakenPair = "XBTUSD"

// KrakenProvider implements price.Provider for the Kraken public ticker.
// Kraken names Bitcoin XBT and returns pair keys in its own format
// (e.g. XXBTZUSD), so result matching is by substring.
type KrakenProvider struct {
	desc   source.Descriptor
	caller *source.Caller
}

func NewKrakenProvider(client *http.Client, desc source.Descriptor) *KrakenProvider {
	return &KrakenProvider{
		desc:   desc,
		caller: source.NewCaller(desc.Name, client),
	}
}

func (p *KrakenProvider) Name() string {
	return p.desc.Name
}

func (p *KrakenProvider) Descriptor() source.Descriptor {
	return p.desc
}

// krakenPayload is the Kraken ticker response envelope. C holds the last
// trade as [price, lot volume].
type krakenPayload struct {
	Error  []string `json:"error"`
	Result map[string]struct {
		C []string `json:"c"`
	} `json:"result"`
}

func (p *KrakenProvider) Fetch(ctx context.Context) (price.Quote, error) {
	values := url.Values{}
	values.Set("pair", krakenPair)

	var payload krakenPayload
	if serr := p.caller.GetJSON(ctx, fmt.Sprintf("%s?%s", p.desc.BaseURL, values.Encode()), nil, &payload); serr != nil {
		return price.Quote{}, serr
	}

	return normalizeKraken(p.desc.Name, payload, time.Now().UTC())
}

// normalizeKraken maps a Kraken ticker payload to a Quote. Pure.
func normalizeKraken(src string, payload krakenPayload, now time.Time) (price.Quote, error) {
	if len(payload.Error) > 0 {
		return price.Quote{}, source.Errf(src, source.KindUpstreamError, "kraken api errors: %s", strings.Join(payload.Error, "; "))
	}

	for pair, ticker := range payload.Result {
		if !strings.Contains(pair, "XBT") {
			continue
		}
		if len(ticker.C) == 0 || ticker.C[0] == "" {
			continue
		}
		last, err := decimal.NewFromString(ticker.C[0])
		if err != nil {
			return price.Quote{}, source.Errf(src, source.KindParseError, "invalid last trade price %q", ticker.C[0])
		}
		return price.Quote{
			Asset:     price.AssetBTC,
			Price:     last,
			Currency:  price.CurrencyUSD,
			Source:    src,
			Timestamp: now,
		}, nil
	}

	return price.Quote{}, source.Errf(src, source.KindParseError, "no XBT ticker in response")
}
