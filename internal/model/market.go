package model

import "time"

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the daily history of one symbol, oldest bar first.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of bars.
func (p *PriceSeries) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Bars)
}

// Last returns the most recent bar and false when the series is empty.
func (p *PriceSeries) Last() (OHLCV, bool) {
	if p.Len() == 0 {
		return OHLCV{}, false
	}
	return p.Bars[len(p.Bars)-1], true
}

// Closes returns the close prices in bar order.
func (p *PriceSeries) Closes() []float64 {
	closes := make([]float64, p.Len())
	for i, b := range p.Bars {
		closes[i] = b.Close
	}
	return closes
}
