package model

// Indicators holds the technical values derived from a PriceSeries.
// A value is only meaningful when its Has* flag is set; missing history
// never degrades to zero.
type Indicators struct {
	CurrentPrice float64
	HasPrice     bool

	AvgVolume50  float64
	HasAvgVolume bool

	SMA200    float64
	HasSMA200 bool

	High52w    float64
	HasHigh52w bool

	Return1Y    float64
	HasReturn1Y bool
}
