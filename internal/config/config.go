package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// TechnicalConfig holds the price/volume pre-filter thresholds.
type TechnicalConfig struct {
	MinPrice           float64 `yaml:"min_price"`
	MinAvgVolume       float64 `yaml:"min_avg_volume"`
	VolumePeriod       int     `yaml:"volume_period"`
	TrendPeriod        int     `yaml:"trend_period"`
	NearHighPct        float64 `yaml:"near_high_pct"`
	TradingDaysPerYear int     `yaml:"trading_days_per_year"`
}

// FundamentalConfig holds the CAN-SLIM "C" and "A" thresholds.
type FundamentalConfig struct {
	EPSGrowth     float64 `yaml:"eps_growth"`
	RevenueGrowth float64 `yaml:"revenue_growth"`
	ROE           float64 `yaml:"roe"`
}

// ExitConfig holds the exit-strategy percentages and moving-average periods.
type ExitConfig struct {
	ProfitTargetPct float64 `yaml:"profit_target_pct"`
	StopLossPct     float64 `yaml:"stop_loss_pct"`
	MAStopLossPct   float64 `yaml:"ma_stop_loss_pct"`
	MAShort         int     `yaml:"ma_short"`
	MALong          int     `yaml:"ma_long"`
}

// Config holds all application configuration.
type Config struct {
	Screening struct {
		Technical   TechnicalConfig   `yaml:"technical"`
		Fundamental FundamentalConfig `yaml:"fundamental"`
	} `yaml:"screening"`
	Exit       ExitConfig `yaml:"exit"`
	DataSource struct {
		Provider       string        `yaml:"provider"` // yahoo | mock
		BaseURL        string        `yaml:"base_url"`
		Benchmark      string        `yaml:"benchmark"`
		LookbackDays   int           `yaml:"lookback_days"`
		Timeout        time.Duration `yaml:"timeout"`
		APICallDelay   time.Duration `yaml:"api_call_delay"`
		MaxRetries     int           `yaml:"max_retries"`
		RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	} `yaml:"data_source"`
	Tickers struct {
		Path string `yaml:"path"`
	} `yaml:"tickers"`
	Chart struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"chart"`
	News struct {
		MaxItems int `yaml:"max_items"`
	} `yaml:"news"`
	Slack struct {
		BotToken string `yaml:"bot_token"`
		Channel  string `yaml:"channel"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"slack"`
	Line struct {
		ChannelToken string `yaml:"channel_token"`
		To           string `yaml:"to"`
		BaseURL      string `yaml:"base_url"`
	} `yaml:"line"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy  string `yaml:"proxy"`
	DryRun bool   `yaml:"dry_run"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error. The pacing and retry delays are seeded
// before the file is read, so an explicit 0 there disables them.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.presetDelays()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a Config with every default applied and no file or environment input.
func Default() *Config {
	cfg := &Config{}
	cfg.presetDelays()
	cfg.applyDefaults()
	return cfg
}

// presetDelays seeds the delays for which zero is a meaningful setting.
func (c *Config) presetDelays() {
	c.DataSource.APICallDelay = time.Second
	c.DataSource.RetryBaseDelay = time.Second
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv("SLACK_CHANNEL"); v != "" {
		c.Slack.Channel = v
	}
	if v := os.Getenv("LINE_CHANNEL_TOKEN"); v != "" {
		c.Line.ChannelToken = v
	}
	if v := os.Getenv("LINE_TO"); v != "" {
		c.Line.To = v
	}
	if v := os.Getenv("TICKER_LIST_PATH"); v != "" {
		c.Tickers.Path = v
	}
	if v := os.Getenv("CHART_OUTPUT_DIR"); v != "" {
		c.Chart.OutputDir = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("API_CALL_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse API_CALL_DELAY: %w", err)
		}
		c.DataSource.APICallDelay = d
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse DRY_RUN: %w", err)
		}
		c.DryRun = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	t := &c.Screening.Technical
	if t.MinPrice == 0 {
		t.MinPrice = 10.0
	}
	if t.MinAvgVolume == 0 {
		t.MinAvgVolume = 200_000
	}
	if t.VolumePeriod == 0 {
		t.VolumePeriod = 50
	}
	if t.TrendPeriod == 0 {
		t.TrendPeriod = 200
	}
	if t.NearHighPct == 0 {
		t.NearHighPct = 0.85
	}
	if t.TradingDaysPerYear == 0 {
		t.TradingDaysPerYear = 252
	}

	f := &c.Screening.Fundamental
	if f.EPSGrowth == 0 {
		f.EPSGrowth = 0.20
	}
	if f.RevenueGrowth == 0 {
		f.RevenueGrowth = 0.20
	}
	if f.ROE == 0 {
		f.ROE = 0.15
	}

	if c.Exit.ProfitTargetPct == 0 {
		c.Exit.ProfitTargetPct = 0.20
	}
	if c.Exit.StopLossPct == 0 {
		c.Exit.StopLossPct = 0.07
	}
	if c.Exit.MAStopLossPct == 0 {
		c.Exit.MAStopLossPct = 0.03
	}
	if c.Exit.MAShort == 0 {
		c.Exit.MAShort = 10
	}
	if c.Exit.MALong == 0 {
		c.Exit.MALong = 50
	}

	ds := &c.DataSource
	if ds.Provider == "" {
		ds.Provider = "yahoo"
	}
	if ds.Benchmark == "" {
		ds.Benchmark = "SPY"
	}
	if ds.LookbackDays == 0 {
		ds.LookbackDays = 400
	}
	if ds.Timeout == 0 {
		ds.Timeout = 30 * time.Second
	}
	if ds.MaxRetries == 0 {
		ds.MaxRetries = 3
	}

	if c.Tickers.Path == "" {
		c.Tickers.Path = "tickers.csv"
	}
	if c.Chart.OutputDir == "" {
		c.Chart.OutputDir = "output"
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 2
	}
	if c.Slack.Channel == "" {
		c.Slack.Channel = "#stock-alerts"
	}
	if c.Slack.BaseURL == "" {
		c.Slack.BaseURL = "https://slack.com/api"
	}
	if c.Line.BaseURL == "" {
		c.Line.BaseURL = "https://api.line.me"
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks thresholds and that at least one notifier is configured.
func (c *Config) Validate() error {
	t := c.Screening.Technical
	if t.MinPrice <= 0 {
		return fmt.Errorf("screening.technical.min_price must be positive")
	}
	if t.MinAvgVolume <= 0 {
		return fmt.Errorf("screening.technical.min_avg_volume must be positive")
	}
	if t.VolumePeriod <= 0 || t.TrendPeriod <= 0 || t.TradingDaysPerYear <= 0 {
		return fmt.Errorf("screening.technical periods must be positive")
	}
	if err := checkFraction("screening.technical.near_high_pct", t.NearHighPct); err != nil {
		return err
	}

	f := c.Screening.Fundamental
	for name, v := range map[string]float64{
		"screening.fundamental.eps_growth":     f.EPSGrowth,
		"screening.fundamental.revenue_growth": f.RevenueGrowth,
		"screening.fundamental.roe":            f.ROE,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Exit.ProfitTargetPct <= 0 {
		return fmt.Errorf("exit.profit_target_pct must be positive, got %v", c.Exit.ProfitTargetPct)
	}
	if err := checkFraction("exit.stop_loss_pct", c.Exit.StopLossPct); err != nil {
		return err
	}
	if err := checkFraction("exit.ma_stop_loss_pct", c.Exit.MAStopLossPct); err != nil {
		return err
	}
	if c.Exit.MAShort <= 0 || c.Exit.MALong <= 0 {
		return fmt.Errorf("exit moving-average periods must be positive")
	}

	ds := c.DataSource
	if ds.Provider != "yahoo" && ds.Provider != "mock" {
		return fmt.Errorf("data_source.provider must be yahoo or mock, got %q", ds.Provider)
	}
	if ds.Benchmark == "" {
		return fmt.Errorf("data_source.benchmark is required")
	}
	if ds.LookbackDays <= 0 {
		return fmt.Errorf("data_source.lookback_days must be positive")
	}
	if ds.MaxRetries <= 0 {
		return fmt.Errorf("data_source.max_retries must be positive")
	}
	if ds.APICallDelay < 0 || ds.RetryBaseDelay < 0 {
		return fmt.Errorf("data_source delays must not be negative")
	}

	if !c.DryRun && !c.SlackEnabled() && !c.LineEnabled() {
		return fmt.Errorf("slack.bot_token or line.channel_token is required unless dry_run is set")
	}
	if c.LineEnabled() && c.Line.To == "" {
		return fmt.Errorf("line.to is required when line.channel_token is set")
	}
	return nil
}

// SlackEnabled reports whether Slack delivery is configured.
func (c *Config) SlackEnabled() bool { return c.Slack.BotToken != "" }

// LineEnabled reports whether LINE delivery is configured.
func (c *Config) LineEnabled() bool { return c.Line.ChannelToken != "" }

// Masked returns a copy with secrets replaced, for display.
func (c *Config) Masked() Config {
	out := *c
	if out.Slack.BotToken != "" {
		out.Slack.BotToken = "****"
	}
	if out.Line.ChannelToken != "" {
		out.Line.ChannelToken = "****"
	}
	return out
}

func checkFraction(name string, v float64) error {
	if v <= 0 || v >= 1 {
		return fmt.Errorf("%s must be between 0 and 1 (exclusive), got %v", name, v)
	}
	return nil
}
