package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"portfolio-advisor/internal/api"
	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

// DataBank reads yearly indicators from the World Bank API.
type DataBank struct {
	client *api.Client
	cache  *Cache
	retry  *api.RetryConfig
}

var _ interfaces.MacroData = (*DataBank)(nil)

func NewDataBank(cfg store.DataConfig, cache *Cache) *DataBank {
	return &DataBank{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(cfg.DataBankBaseURL, "/")),
			api.WithTimeout(cfg.Timeout),
			api.WithHeader("Accept", "application/json"),
			api.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
			api.WithLogging(true),
		),
		cache: cache,
		retry: retryConfig(cfg),
	}
}

type worldBankObservation struct {
	Indicator struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"indicator"`
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type worldBankMessage struct {
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

// Series returns the indicator for a country keyed by year.
func (d *DataBank) Series(ctx context.Context, country, indicator string) (*types.MacroSeries, error) {
	path := fmt.Sprintf("/v2/country/%s/indicator/%s?format=json&per_page=100",
		url.PathEscape(country), url.PathEscape(indicator))
	body, err := get(ctx, d.client, d.cache, d.retry, path)
	if err != nil {
		return nil, err
	}
	return parseWorldBank(body, indicator)
}

// parseWorldBank decodes the [meta, observations] pair the API returns.
func parseWorldBank(body []byte, indicator string) (*types.MacroSeries, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, fmt.Errorf("decode databank response: %w", err)
	}
	if len(parts) == 0 {
		return nil, ErrNoData
	}
	if len(parts) == 1 {
		var msg worldBankMessage
		if err := json.Unmarshal(parts[0], &msg); err == nil && len(msg.Message) > 0 {
			return nil, fmt.Errorf("databank: %s", msg.Message[0].Value)
		}
		return nil, ErrNoData
	}

	var obs []worldBankObservation
	if err := json.Unmarshal(parts[1], &obs); err != nil {
		return nil, fmt.Errorf("decode databank observations: %w", err)
	}
	if len(obs) == 0 {
		return nil, ErrNoData
	}
	series := &types.MacroSeries{Indicator: indicator, Data: make(map[string]*float64, len(obs))}
	for _, o := range obs {
		series.Data[o.Date] = o.Value
	}
	return series, nil
}
