package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"weatherbtc/internal/price"
	"weatherbtc/internal/source"
)

// BlockchainProvider implements price.Provider for the blockchain.info
// ticker, which returns a map of currency code to last price.
type BlockchainProvider struct {
	desc   source.Descriptor
	caller *source.Caller
}

func NewBlockchainProvider(client *http.Client, desc source.Descriptor) *BlockchainProvider {
	return &BlockchainProvider{
		desc:   desc,
		caller: source.NewCaller(desc.Name, client),
	}
}

func (p *BlockchainProvider) Name() string {
	return p.desc.Name
}

func (p *BlockchainProvider) Descriptor() source.Descriptor {
	return p.desc
}

// blockchainTicker is one currency entry of the blockchain.info ticker.
type blockchainTicker struct {
	Last *float64 `json:"last"`
}

func (p *BlockchainProvider) Fetch(ctx context.Context) (price.Quote, error) {
	var payload map[string]blockchainTicker
	if serr := p.caller.GetJSON(ctx, p.desc.BaseURL, nil, &payload); serr != nil {
		return price.Quote{}, serr
	}

	return normalizeBlockchain(p.desc.Name, payload, time.Now().UTC())
}

// normalizeBlockchain maps a blockchain.info ticker payload to a Quote. Pure.
func normalizeBlockchain(src string, payload map[string]blockchainTicker, now time.Time) (price.Quote, error) {
	usd, ok := payload[price.CurrencyUSD]
	if !ok || usd.Last == nil {
		return price.Quote{}, source.Errf(src, source.KindParseError, "missing USD.last")
	}

	return price.Quote{
		Asset:     price.AssetBTC,
		Price:     decimal.NewFromFloat(*usd.Last),
		Currency:  price.CurrencyUSD,
		Source:    src,
		Timestamp: now,
	}, nil
}
