package model

// SkipReason says why a symbol did not qualify.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipPrice            SkipReason = "price"
	SkipVolume           SkipReason = "volume"
	SkipTrend            SkipReason = "trend"
	SkipNearHigh         SkipReason = "near_high"
	SkipRelativeStrength SkipReason = "relative_strength"
	SkipNoPriceData      SkipReason = "no_price_data"
	SkipNoFundamentals   SkipReason = "no_fundamentals"
	SkipRateLimited      SkipReason = "rate_limited"
	SkipNotQualified     SkipReason = "not_qualified"
)

// Qualifier is a symbol that passed both filters.
type Qualifier struct {
	Symbol      string
	Price       float64
	AvgVolume50 float64
	SMA10       float64
	SMA50       float64
	Return1Y    float64
	Metrics     FinancialMetrics
	Exit        ExitStrategy
	Series      *PriceSeries
}

// Outcome is the single result recorded for one input symbol occurrence.
type Outcome struct {
	Symbol string
	Reason SkipReason
}

// Qualified reports whether the outcome is a qualification.
func (o Outcome) Qualified() bool { return o.Reason == SkipNone }

// ScreeningResult aggregates one run. Processed always equals Qualified + Skipped.
type ScreeningResult struct {
	Processed       int
	Qualified       int
	Skipped         int
	TechnicalPass   int
	SkipsByReason   map[SkipReason]int
	Qualifiers      []Qualifier
	Outcomes        []Outcome
	BenchmarkReturn float64
}

// Record adds an outcome and keeps the counters consistent.
func (r *ScreeningResult) Record(o Outcome) {
	if r.SkipsByReason == nil {
		r.SkipsByReason = make(map[SkipReason]int)
	}
	r.Processed++
	if o.Qualified() {
		r.Qualified++
	} else {
		r.Skipped++
		r.SkipsByReason[o.Reason]++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Alert is everything a notifier needs for one qualifying symbol.
type Alert struct {
	Symbol           string
	CompanyName      string
	CurrentPrice     float64
	AvgVolume50      float64
	Metrics          FinancialMetrics
	Exit             ExitStrategy
	RelativeStrength string
	ChartPath        string
	News             []NewsItem
}
