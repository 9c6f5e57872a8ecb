package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *YahooProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewYahooProvider(srv.URL, "", 2*time.Second, zap.NewNop())
}

func chartBar(ts int64, closePrice float64, volume int) *finance.ChartBar {
	c := decimal.NewFromFloat(closePrice)
	return &finance.ChartBar{Open: c, High: c, Low: c, Close: c, AdjClose: c, Volume: volume, Timestamp: int(ts)}
}

func TestYahooFetchPriceSeries_SortsAndSkipsNullBars(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {})
	var gotSymbol string
	y.chartBars = func(p *chart.Params) ([]*finance.ChartBar, error) {
		gotSymbol = p.Symbol
		return []*finance.ChartBar{
			chartBar(300, 12, 500),
			chartBar(100, 10, 100),
			chartBar(200, 0, 0),
		}, nil
	}

	s, err := y.FetchPriceSeries(context.Background(), "SPX", 400)
	require.NoError(t, err)
	assert.Equal(t, "^GSPC", gotSymbol)
	assert.Equal(t, "SPX", s.Symbol)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, []float64{10, 12}, s.Closes())
	assert.Equal(t, 500.0, s.Bars[1].Volume)
}

func TestYahooFetchPriceSeries_Errors(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {})

	y.chartBars = func(*chart.Params) ([]*finance.ChartBar, error) { return nil, nil }
	_, err := y.FetchPriceSeries(context.Background(), "NONE", 400)
	assert.ErrorIs(t, err, ErrNotFound)

	y.chartBars = func(*chart.Params) ([]*finance.ChartBar, error) {
		return nil, errors.New("remote-error, code: 429 Too Many Requests")
	}
	_, err = y.FetchPriceSeries(context.Background(), "AAPL", 400)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestYahooFetchFinancialData(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/NVDA", r.URL.Path)
		assert.Equal(t, quoteSummaryModules, r.URL.Query().Get("modules"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"quoteSummary":{"result":[{
			"financialData":{"returnOnEquity":{"raw":0.91,"fmt":"91%"},"revenueGrowth":{"raw":1.22},"earningsGrowth":{"raw":5.0}},
			"defaultKeyStatistics":{"earningsQuarterlyGrowth":{"raw":1.68}},
			"assetProfile":{"sector":"Technology","industry":"Semiconductors"}
		}],"error":null}}`))
	})

	m, err := y.FetchFinancialData(context.Background(), "NVDA")
	require.NoError(t, err)
	require.NotNil(t, m.EPSGrowthQ)
	assert.Equal(t, 1.68, *m.EPSGrowthQ)
	assert.Equal(t, 1.22, *m.RevenueGrowthQ)
	assert.Equal(t, 0.91, *m.ROE)
	assert.Equal(t, "Semiconductors", m.Industry)
}

func TestYahooFetchFinancialData_QuarterlyEPSNotTakenFromAnnual(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"quoteSummary":{"result":[{
			"financialData":{"returnOnEquity":{},"revenueGrowth":{"raw":0.25},"earningsGrowth":{"raw":0.3}},
			"defaultKeyStatistics":{"earningsQuarterlyGrowth":{}}
		}]}}`))
	})

	m, err := y.FetchFinancialData(context.Background(), "X")
	require.NoError(t, err)
	assert.Nil(t, m.EPSGrowthQ)
	require.NotNil(t, m.RevenueGrowthQ)
	assert.Equal(t, 0.25, *m.RevenueGrowthQ)
	assert.Nil(t, m.ROE)
}

func TestYahooFetchFinancialData_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{}`, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, `Too Many Requests`, ErrRateLimited},
		{"gateway timeout", http.StatusGatewayTimeout, ``, ErrTimeout},
		{"empty result", http.StatusOK, `{"quoteSummary":{"result":[]}}`, ErrNotFound},
		{"empty payload", http.StatusOK, `{"quoteSummary":{"result":[{"financialData":{}}]}}`, ErrNotFound},
		{"api error", http.StatusOK, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"No fundamentals data found"}}}`, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := y.FetchFinancialData(context.Background(), "ZZZ")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestYahooFetchFinancialData_ClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	y := NewYahooProvider(srv.URL, "", 20*time.Millisecond, zap.NewNop())

	_, err := y.FetchFinancialData(context.Background(), "SLOW")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestYahooFetchCompanyName(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {})

	y.quoteName = func(string) (string, error) { return "Apple Inc.", nil }
	name, err := y.FetchCompanyName(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", name)

	y.quoteName = func(string) (string, error) { return "", nil }
	name, err = y.FetchCompanyName(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", name)

	y.quoteName = func(string) (string, error) { return "", ErrNotFound }
	name, err = y.FetchCompanyName(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "AAPL", name)
}
