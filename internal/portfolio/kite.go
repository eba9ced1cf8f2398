package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/types"
)

// KiteParams configures the Zerodha Kite account holdings are pulled from.
type KiteParams struct {
	APIKey      string
	AccessToken string
	Exchange    string
	BaseURI     string
}

// KiteSource reads demat holdings from a Kite Connect account.
type KiteSource struct {
	p  KiteParams
	kc *kiteconnect.Client
}

var _ interfaces.HoldingsSource = (*KiteSource)(nil)

func NewKiteSource(p KiteParams) (*KiteSource, error) {
	if p.APIKey == "" || p.AccessToken == "" {
		return nil, errors.New("kite: api key and access token are required")
	}
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	if p.BaseURI != "" {
		kc.SetBaseURI(p.BaseURI)
	}
	return &KiteSource{p: p, kc: kc}, nil
}

// Holdings returns the account's holdings on the configured exchange. An empty exchange keeps all.
func (k *KiteSource) Holdings(ctx context.Context) ([]types.Holding, error) {
	raw, err := k.kc.GetHoldings()
	if err != nil {
		return nil, fmt.Errorf("kite holdings: %w", err)
	}

	out := make([]types.Holding, 0, len(raw))
	for _, h := range raw {
		if k.p.Exchange != "" && h.Exchange != "" && !strings.EqualFold(h.Exchange, k.p.Exchange) {
			continue
		}
		if h.Quantity <= 0 {
			logger.Debug(ctx, "skipping empty kite holding", "symbol", h.Tradingsymbol)
			continue
		}
		holding := types.Holding{
			Ticker:   strings.ToUpper(h.Tradingsymbol),
			Quantity: h.Quantity,
		}
		if h.AveragePrice > 0 {
			avg := h.AveragePrice
			holding.PurchasePrice = &avg
		}
		out = append(out, holding)
	}
	logger.Info(ctx, "fetched kite holdings", "count", len(out), "exchange", k.p.Exchange)
	return out, nil
}
