package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"portfolio-advisor/internal/api"
	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/types"
)

// ErrNoData is returned when a provider answers but has nothing for the symbol.
var ErrNoData = errors.New("no data returned")

// Yahoo fetches chart, insight and analyst data from Yahoo Finance.
type Yahoo struct {
	client *api.Client
	cache  *Cache
	retry  *api.RetryConfig
	cfg    store.DataConfig
}

var _ interfaces.MarketData = (*Yahoo)(nil)

func NewYahoo(cfg store.DataConfig, cache *Cache) *Yahoo {
	return &Yahoo{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(cfg.YahooBaseURL, "/")),
			api.WithTimeout(cfg.Timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
			api.WithLogging(true),
		),
		cache: cache,
		retry: retryConfig(cfg),
		cfg:   cfg,
	}
}

func retryConfig(cfg store.DataConfig) *api.RetryConfig {
	return &api.RetryConfig{
		MaxAttempts: cfg.MaxRetries + 1,
		InitialWait: cfg.RetryDelay,
		MaxWait:     8 * cfg.RetryDelay,
	}
}

// get performs a cached, retried GET for path.
func get(ctx context.Context, client *api.Client, cache *Cache, retry *api.RetryConfig, path string) ([]byte, error) {
	return cache.GetOrFetch(MakeKey("GET", path), func() ([]byte, error) {
		req := api.NewRequest(http.MethodGet, path).WithContext(ctx)
		resp, err := client.DoWithRetry(req, retry)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	})
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (r *rawValue) get() *float64 {
	if r == nil {
		return nil
	}
	return r.Raw
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) Chart(ctx context.Context, ticker string) (*types.Chart, error) {
	q := url.Values{}
	q.Set("interval", y.cfg.ChartInterval)
	q.Set("range", y.cfg.ChartRange)
	if y.cfg.Region != "" {
		q.Set("region", y.cfg.Region)
	}
	q.Set("includeAdjustedClose", "true")
	path := fmt.Sprintf("/v8/finance/chart/%s?%s", url.PathEscape(ticker), q.Encode())

	body, err := get(ctx, y.client, y.cache, y.retry, path)
	if err != nil {
		return nil, err
	}
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	res := resp.Chart.Result[0]
	chart := &types.Chart{Timestamps: res.Timestamp}
	if len(res.Indicators.Quote) > 0 {
		chart.ClosePrices = res.Indicators.Quote[0].Close
	}
	return chart, nil
}

type insightsResponse struct {
	Finance struct {
		Result *struct {
			SummaryDetail *struct {
				TrailingPE    *rawValue `json:"trailingPE"`
				ForwardPE     *rawValue `json:"forwardPE"`
				DividendYield *rawValue `json:"dividendYield"`
				MarketCap     *rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				PriceToBook     *rawValue `json:"priceToBook"`
				EnterpriseValue *rawValue `json:"enterpriseValue"`
			} `json:"defaultKeyStatistics"`
			RecommendationTrend *struct {
				Trend []struct {
					Period     string `json:"period"`
					StrongBuy  *int   `json:"strongBuy"`
					Buy        *int   `json:"buy"`
					Hold       *int   `json:"hold"`
					Sell       *int   `json:"sell"`
					StrongSell *int   `json:"strongSell"`
				} `json:"trend"`
			} `json:"recommendationTrend"`
			InstrumentInfo *struct {
				Valuation *struct {
					Description *string `json:"description"`
					Discount    *string `json:"discount"`
				} `json:"valuation"`
			} `json:"instrumentInfo"`
			SigDevs []struct {
				Headline string `json:"headline"`
				Date     string `json:"date"`
			} `json:"sigDevs"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"finance"`
}

func (y *Yahoo) Fundamentals(ctx context.Context, ticker string) (*types.Fundamentals, error) {
	path := "/ws/insights/v2/finance/insights?symbol=" + url.QueryEscape(ticker)
	body, err := get(ctx, y.client, y.cache, y.retry, path)
	if err != nil {
		return nil, err
	}
	var resp insightsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	if resp.Finance.Error != nil {
		return nil, fmt.Errorf("%s: %s", resp.Finance.Error.Code, resp.Finance.Error.Description)
	}
	res := resp.Finance.Result
	if res == nil {
		return nil, ErrNoData
	}

	f := &types.Fundamentals{}
	if sd := res.SummaryDetail; sd != nil {
		f.Summary = &types.Summary{
			TrailingPE:    sd.TrailingPE.get(),
			ForwardPE:     sd.ForwardPE.get(),
			DividendYield: sd.DividendYield.get(),
			MarketCap:     sd.MarketCap.get(),
		}
	}
	if ks := res.DefaultKeyStatistics; ks != nil {
		f.KeyStats = &types.KeyStats{
			PriceToBook:     ks.PriceToBook.get(),
			EnterpriseValue: ks.EnterpriseValue.get(),
		}
	}
	if rt := res.RecommendationTrend; rt != nil {
		for _, t := range rt.Trend {
			f.RecommendationTrend = append(f.RecommendationTrend, types.RecommendationTrend{
				Period: t.Period, StrongBuy: t.StrongBuy, Buy: t.Buy, Hold: t.Hold, Sell: t.Sell, StrongSell: t.StrongSell,
			})
		}
	}
	if ii := res.InstrumentInfo; ii != nil && ii.Valuation != nil {
		f.Valuation = &types.Valuation{Description: ii.Valuation.Description, Discount: ii.Valuation.Discount}
	}
	for _, d := range res.SigDevs {
		f.SignificantDevelopments = append(f.SignificantDevelopments, types.Development{Headline: d.Headline, Date: d.Date})
	}
	return f, nil
}

type analystResponse struct {
	Result []struct {
		Hits []struct {
			ReportTitle string `json:"report_title"`
			Abstract    string `json:"abstract"`
		} `json:"hits"`
	} `json:"result"`
}

func (y *Yahoo) AnalystReports(ctx context.Context, ticker string) ([]types.AnalystReport, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	if y.cfg.Region != "" {
		q.Set("region", y.cfg.Region)
	}
	if y.cfg.Lang != "" {
		q.Set("lang", y.cfg.Lang)
	}
	body, err := get(ctx, y.client, y.cache, y.retry, "/ws/insights/v2/finance/analyst?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var resp analystResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode analyst opinions: %w", err)
	}
	if resp.Result == nil {
		return nil, ErrNoData
	}
	out := make([]types.AnalystReport, 0, len(resp.Result))
	for _, r := range resp.Result {
		rep := types.AnalystReport{Hits: make([]types.ReportHit, 0, len(r.Hits))}
		for _, h := range r.Hits {
			rep.Hits = append(rep.Hits, types.ReportHit{Title: h.ReportTitle, Abstract: h.Abstract})
		}
		out = append(out, rep)
	}
	return out, nil
}
