package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"go.uber.org/zap"

	"CanSlimHunter/internal/model"
)

// DefaultYahooBaseURL is the Yahoo Finance API host used for quoteSummary and search.
const DefaultYahooBaseURL = "https://query2.finance.yahoo.com"

const quoteSummaryModules = "financialData,defaultKeyStatistics,assetProfile"

// YahooProvider implements Provider using Yahoo Finance. Daily bars and quotes
// come from finance-go; fundamentals come from the quoteSummary endpoint.
type YahooProvider struct {
	client    *resty.Client
	logger    *zap.Logger
	SymbolMap map[string]string // maps an input symbol to a Yahoo ticker
	now       func() time.Time

	// chartBars and quoteName default to finance-go and are swapped in tests.
	chartBars func(params *chart.Params) ([]*finance.ChartBar, error)
	quoteName func(symbol string) (string, error)
}

// NewYahooProvider creates a Yahoo provider with optional proxy support.
// finance-go uses a package-level HTTP client, so the proxy and timeout are applied there too.
func NewYahooProvider(baseURL, proxyURL string, timeout time.Duration, logger *zap.Logger) *YahooProvider {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	transport := proxyTransport(proxyURL)
	finance.SetHTTPClient(&http.Client{Timeout: timeout, Transport: transport})

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetTransport(transport).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetHeader("Accept", "application/json")

	return &YahooProvider{
		client: client,
		logger: logger,
		SymbolMap: map[string]string{
			"SPX":   "^GSPC",
			"SP500": "^GSPC",
		},
		now:       time.Now,
		chartBars: fetchChartBars,
		quoteName: fetchQuoteName,
	}
}

func (y *YahooProvider) Name() string { return "yahoo" }

func (y *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := y.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// FetchPriceSeries returns daily bars covering lookbackDays calendar days, oldest first.
func (y *YahooProvider) FetchPriceSeries(ctx context.Context, symbol string, lookbackDays int) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	end := y.now()
	start := end.AddDate(0, 0, -lookbackDays)
	params := &chart.Params{
		Symbol:   y.yahooSymbol(symbol),
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	raw, err := y.chartBars(params)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, classifyErr(err))
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, b := range raw {
		c := b.Close.InexactFloat64()
		if c == 0 {
			continue // null bars (holidays, halts)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(int64(b.Timestamp), 0),
			Open:   b.Open.InexactFloat64(),
			High:   b.High.InexactFloat64(),
			Low:    b.Low.InexactFloat64(),
			Close:  c,
			Volume: float64(b.Volume),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNotFound)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	y.logger.Debug("price series fetched", zap.String("symbol", symbol), zap.Int("bars", len(bars)))
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: end}, nil
}

// rawValue is Yahoo's {"raw": 0.25, "fmt": "25%"} wrapper. Missing values arrive as {}.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (r *rawValue) value() *float64 {
	if r == nil {
		return nil
	}
	return r.Raw
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData *struct {
				ReturnOnEquity *rawValue `json:"returnOnEquity"`
				RevenueGrowth  *rawValue `json:"revenueGrowth"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				EarningsQuarterlyGrowth *rawValue `json:"earningsQuarterlyGrowth"`
			} `json:"defaultKeyStatistics"`
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFinancialData returns quarterly EPS growth, quarterly revenue growth, ROE, sector and industry.
// A payload carrying none of the numeric fields is reported as ErrNotFound.
func (y *YahooProvider) FetchFinancialData(ctx context.Context, symbol string) (*model.FinancialMetrics, error) {
	var out quoteSummaryResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParam("modules", quoteSummaryModules).
		SetResult(&out).
		Get("/v10/finance/quoteSummary/" + url.PathEscape(y.yahooSymbol(symbol)))
	if err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w", symbol, classifyErr(err))
	}
	if err := classifyStatus(resp.StatusCode(), resp.String()); err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w", symbol, err)
	}
	qs := out.QuoteSummary
	if qs.Error != nil {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w: %s", symbol, ErrNotFound, qs.Error.Description)
	}
	if len(qs.Result) == 0 {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w", symbol, ErrNotFound)
	}

	r := qs.Result[0]
	m := &model.FinancialMetrics{}
	if r.DefaultKeyStatistics != nil {
		m.EPSGrowthQ = r.DefaultKeyStatistics.EarningsQuarterlyGrowth.value()
	}
	if fd := r.FinancialData; fd != nil {
		m.RevenueGrowthQ = fd.RevenueGrowth.value()
		m.ROE = fd.ReturnOnEquity.value()
	}
	if ap := r.AssetProfile; ap != nil {
		m.Sector = ap.Sector
		m.Industry = ap.Industry
	}
	if m.Empty() {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w: empty payload", symbol, ErrNotFound)
	}
	return m, nil
}

// FetchCompanyName returns the quote's short name, or the symbol itself when Yahoo has none.
func (y *YahooProvider) FetchCompanyName(ctx context.Context, symbol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := y.quoteName(y.yahooSymbol(symbol))
	if err != nil {
		return symbol, fmt.Errorf("yahoo quote %s: %w", symbol, classifyErr(err))
	}
	if name == "" {
		return symbol, nil
	}
	return name, nil
}

func fetchChartBars(params *chart.Params) ([]*finance.ChartBar, error) {
	iter := chart.Get(params)
	var bars []*finance.ChartBar
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

func fetchQuoteName(symbol string) (string, error) {
	q, err := quote.Get(symbol)
	if err != nil {
		return "", err
	}
	if q == nil {
		return "", ErrNotFound
	}
	return q.ShortName, nil
}
