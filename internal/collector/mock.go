package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"CanSlimHunter/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// With Generate set, symbols without fixtures get deterministic synthetic data.
type MockProvider struct {
	Series          map[string]*model.PriceSeries
	Metrics         map[string]*model.FinancialMetrics
	Names           map[string]string
	PriceErrs       map[string]error
	FundamentalErrs map[string]error
	Generate        bool

	mu    sync.Mutex
	calls map[string]int
}

// NewDemoProvider returns a MockProvider that synthesizes data for any symbol.
func NewDemoProvider() *MockProvider {
	return &MockProvider{Generate: true}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchPriceSeries(ctx context.Context, symbol string, lookbackDays int) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.count("price:" + symbol)
	if err, ok := m.PriceErrs[symbol]; ok {
		return nil, err
	}
	if s, ok := m.Series[symbol]; ok {
		return s, nil
	}
	if !m.Generate {
		return nil, fmt.Errorf("mock series %s: %w", symbol, ErrNotFound)
	}
	seed := symbolSeed(symbol)
	base := 20 + float64(seed%500)
	drift := float64(int(seed%7)-2) * 0.0008
	bars := generateMockBars(base, lookbackDays*252/365, drift)
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

func (m *MockProvider) FetchFinancialData(ctx context.Context, symbol string) (*model.FinancialMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.count("fundamental:" + symbol)
	if err, ok := m.FundamentalErrs[symbol]; ok {
		return nil, err
	}
	if fm, ok := m.Metrics[symbol]; ok {
		return fm, nil
	}
	if !m.Generate {
		return nil, fmt.Errorf("mock fundamentals %s: %w", symbol, ErrNotFound)
	}
	seed := symbolSeed(symbol)
	return &model.FinancialMetrics{
		EPSGrowthQ:     model.Float(float64(seed%60) / 100),
		RevenueGrowthQ: model.Float(float64(seed/7%50) / 100),
		ROE:            model.Float(float64(seed/11%40) / 100),
		Sector:         "Technology",
		Industry:       "Software",
	}, nil
}

func (m *MockProvider) FetchCompanyName(_ context.Context, symbol string) (string, error) {
	if name, ok := m.Names[symbol]; ok {
		return name, nil
	}
	return symbol, nil
}

// Calls returns how many times kind ("price" or "fundamental") was fetched for symbol.
func (m *MockProvider) Calls(kind, symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind+":"+symbol]
}

func (m *MockProvider) count(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[key]++
}

func symbolSeed(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32()
}

// generateMockBars builds count daily bars ending today, compounding by drift per bar.
func generateMockBars(basePrice float64, count int, drift float64) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	now := time.Now()
	p := basePrice
	for i := 0; i < count; i++ {
		bars[i] = model.OHLCV{
			Time:   now.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
		p *= 1 + drift
	}
	return bars
}
