package model

import "time"

// FinancialMetrics is the fundamental snapshot for one symbol.
// Growth and ROE are fractions (0.20 = 20%); nil means the provider had no value.
type FinancialMetrics struct {
	EPSGrowthQ     *float64
	RevenueGrowthQ *float64
	ROE            *float64
	Sector         string
	Industry       string
}

// Empty reports whether none of the numeric fields are present.
func (m *FinancialMetrics) Empty() bool {
	return m == nil || (m.EPSGrowthQ == nil && m.RevenueGrowthQ == nil && m.ROE == nil)
}

// Float returns a pointer to v, for building FinancialMetrics literals.
func Float(v float64) *float64 { return &v }

// NewsItem is one recent headline for a symbol.
type NewsItem struct {
	Title       string
	URL         string
	PublishedAt time.Time
}
