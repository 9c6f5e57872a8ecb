package calculator

import "CanSlimHunter/internal/model"

// Periods configures the windows used by Indicators.
type Periods struct {
	Volume     int // average-volume window, typically 50
	Trend      int // long SMA window, typically 200
	YearWindow int // trading days in the 52-week high and 1-year return, typically 252
}

// Indicators derives every technical value the pre-filter needs. Values whose
// window is not covered by the series are left unset rather than zeroed.
func Indicators(bars []model.OHLCV, p Periods) model.Indicators {
	var ind model.Indicators

	if v, err := CurrentPrice(bars); err == nil {
		ind.CurrentPrice, ind.HasPrice = v, true
	}
	if v, err := AverageVolume(bars, p.Volume); err == nil {
		ind.AvgVolume50, ind.HasAvgVolume = v, true
	}
	if v, err := CloseSMA(bars, p.Trend); err == nil {
		ind.SMA200, ind.HasSMA200 = v, true
	}
	if v, err := Calculate52WeekHigh(bars, p.YearWindow); err == nil {
		ind.High52w, ind.HasHigh52w = v, true
	}
	if v, err := TrailingReturn(bars, p.YearWindow); err == nil {
		ind.Return1Y, ind.HasReturn1Y = v, true
	}
	return ind
}
