package store

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Indicators IndicatorsConfig `yaml:"indicators"`
	Rules      RulesConfig      `yaml:"rules"`
	Sentiment  SentimentConfig  `yaml:"sentiment"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Data       DataConfig       `yaml:"data"`
	News       NewsConfig       `yaml:"news"`
	Storage    StorageConfig    `yaml:"storage"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Report     ReportConfig     `yaml:"report"`
	Kite       KiteConfig       `yaml:"kite"`
}

type IndicatorsConfig struct {
	SMAShort   int `yaml:"sma_short" validate:"gt=0"`
	SMAMedium  int `yaml:"sma_medium" validate:"gt=0"`
	SMALong    int `yaml:"sma_long" validate:"gt=0"`
	RSIPeriod  int `yaml:"rsi_period" validate:"gt=0"`
	MACDShort  int `yaml:"macd_short" validate:"gt=0"`
	MACDLong   int `yaml:"macd_long" validate:"gt=0"`
	MACDSignal int `yaml:"macd_signal" validate:"gt=0"`
}

// RulesConfig holds the rule engine thresholds. Sentiment thresholds are symmetric: a buy rule
// needs sentiment above +x and the matching sell rule needs it below -x.
type RulesConfig struct {
	RSIOversold         float64  `yaml:"rsi_oversold" validate:"gte=0,lte=100"`
	RSIOverbought       float64  `yaml:"rsi_overbought" validate:"gte=0,lte=100"`
	StrongSentiment     float64  `yaml:"strong_sentiment" validate:"gte=0,lte=1"`
	MildSentiment       float64  `yaml:"mild_sentiment" validate:"gte=0,lte=1"`
	ValuationConfidence float64  `yaml:"valuation_confidence" validate:"gte=0,lte=1"`
	TrendConfidence     float64  `yaml:"trend_confidence" validate:"gte=0,lte=1"`
	DefaultConfidence   float64  `yaml:"default_confidence" validate:"gte=0,lte=1"`
	ConflictConfidence  float64  `yaml:"conflict_confidence" validate:"gte=0,lte=1"`
	ErrorConfidence     float64  `yaml:"error_confidence" validate:"gte=0,lte=1"`
	UndervaluedLabels   []string `yaml:"undervalued_labels" validate:"required,min=1"`
	OvervaluedLabels    []string `yaml:"overvalued_labels" validate:"required,min=1"`
}

type SentimentConfig struct {
	Headlines      bool `yaml:"headlines"`
	AnalystReports bool `yaml:"analyst_reports"`
	News           bool `yaml:"news"`
}

type PipelineConfig struct {
	Workers        int           `yaml:"workers" validate:"gt=0"`
	FetchWorkers   int           `yaml:"fetch_workers" validate:"gt=0"`
	HoldingTimeout time.Duration `yaml:"holding_timeout" validate:"gte=0"`
}

type DataConfig struct {
	YahooBaseURL      string            `yaml:"yahoo_base_url" validate:"required,url"`
	Region            string            `yaml:"region"`
	Lang              string            `yaml:"lang"`
	ChartRange        string            `yaml:"chart_range" validate:"required"`
	ChartInterval     string            `yaml:"chart_interval" validate:"required"`
	DataBankBaseURL   string            `yaml:"databank_base_url" validate:"required,url"`
	Country           string            `yaml:"country" validate:"required"`
	MacroIndicators   map[string]string `yaml:"macro_indicators"`
	TickerSuffix      string            `yaml:"ticker_suffix"`
	CacheDir          string            `yaml:"cache_dir"`
	CacheTTL          time.Duration     `yaml:"cache_ttl" validate:"gte=0"`
	RequestsPerSecond float64           `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int               `yaml:"burst" validate:"gte=0"`
	Timeout           time.Duration     `yaml:"timeout" validate:"gt=0"`
	MaxRetries        int               `yaml:"max_retries" validate:"gte=0"`
	RetryDelay        time.Duration     `yaml:"retry_delay" validate:"gte=0"`
}

type NewsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	MaxHeadlines int           `yaml:"max_headlines" validate:"gt=0"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	CacheTTL     time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite memory"`
	Path   string `yaml:"path" validate:"required_if=Driver sqlite"`
}

type ScheduleConfig struct {
	Cron       string `yaml:"cron" validate:"required"`
	RunOnStart bool   `yaml:"run_on_start"`
}

// ReportConfig controls run reports. An empty OutputDir disables the CSV file.
type ReportConfig struct {
	OutputDir     string `yaml:"output_dir"`
	DebugFeatures bool   `yaml:"debug_features"`
}

type KiteConfig struct {
	APIKey      string `yaml:"api_key"`
	AccessToken string `yaml:"access_token"`
	Exchange    string `yaml:"exchange"`
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		Indicators: IndicatorsConfig{
			SMAShort:   20,
			SMAMedium:  50,
			SMALong:    200,
			RSIPeriod:  14,
			MACDShort:  12,
			MACDLong:   26,
			MACDSignal: 9,
		},
		Rules: RulesConfig{
			RSIOversold:         35,
			RSIOverbought:       65,
			StrongSentiment:     0.10,
			MildSentiment:       0.05,
			ValuationConfidence: 0.75,
			TrendConfidence:     0.70,
			DefaultConfidence:   0.5,
			ConflictConfidence:  0.4,
			ErrorConfidence:     0.3,
			UndervaluedLabels:   []string{"undervalued", "significantly undervalued"},
			OvervaluedLabels:    []string{"overvalued", "significantly overvalued"},
		},
		Sentiment: SentimentConfig{
			Headlines:      true,
			AnalystReports: true,
		},
		Pipeline: PipelineConfig{
			Workers:        4,
			FetchWorkers:   4,
			HoldingTimeout: 60 * time.Second,
		},
		Data: DataConfig{
			YahooBaseURL:    "https://query1.finance.yahoo.com",
			Region:          "US",
			Lang:            "en-US",
			ChartRange:      "1y",
			ChartInterval:   "1d",
			DataBankBaseURL: "https://api.worldbank.org",
			Country:         "USA",
			MacroIndicators: map[string]string{
				"gdp_us":           "NY.GDP.MKTP.CD",
				"inflation_us_cpi": "FP.CPI.TOTL.ZG",
			},
			CacheDir:          ".cache/advisor",
			CacheTTL:          6 * time.Hour,
			RequestsPerSecond: 2,
			Burst:             2,
			Timeout:           15 * time.Second,
			MaxRetries:        3,
			RetryDelay:        time.Second,
		},
		News: NewsConfig{
			MaxHeadlines: 15,
			Timeout:      30 * time.Second,
			CacheTTL:     time.Hour,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "data/advisor.db",
		},
		Schedule: ScheduleConfig{
			Cron: "0 30 16 * * 1-5",
		},
		Report: ReportConfig{
			OutputDir: "reports",
		},
		Kite: KiteConfig{
			Exchange: "NSE",
		},
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	ind := c.Indicators
	if !(ind.SMAShort < ind.SMAMedium && ind.SMAMedium < ind.SMALong) {
		return fmt.Errorf("indicators: sma windows must increase, got %d/%d/%d", ind.SMAShort, ind.SMAMedium, ind.SMALong)
	}
	if ind.MACDShort >= ind.MACDLong {
		return fmt.Errorf("indicators.macd_short (%d) must be below macd_long (%d)", ind.MACDShort, ind.MACDLong)
	}
	if c.Rules.RSIOversold >= c.Rules.RSIOverbought {
		return fmt.Errorf("rules.rsi_oversold (%.1f) must be below rsi_overbought (%.1f)", c.Rules.RSIOversold, c.Rules.RSIOverbought)
	}
	return nil
}

// applyEnv overrides secrets and paths from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("KITE_API_KEY"); v != "" {
		c.Kite.APIKey = v
	}
	if v := os.Getenv("KITE_ACCESS_TOKEN"); v != "" {
		c.Kite.AccessToken = v
	}
	if v := os.Getenv("ADVISOR_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("ADVISOR_REPORT_DIR"); v != "" {
		c.Report.OutputDir = v
	}
	if v := os.Getenv("ADVISOR_NEWS_ENABLED"); v != "" {
		c.News.Enabled = strings.EqualFold(v, "true")
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.applyEnv()

	// news is only scored when it is being fetched
	if !c.News.Enabled {
		c.Sentiment.News = false
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}
