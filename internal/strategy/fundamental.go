package strategy

import (
	"CanSlimHunter/internal/config"
	"CanSlimHunter/internal/model"
)

// CurrentEarnings is the CAN-SLIM "C" check. Absent growth values stay nil.
type CurrentEarnings struct {
	Pass          bool
	EPSGrowth     *float64
	RevenueGrowth *float64
}

// FundamentalVerdict is the combined "C" and "A" evaluation of one symbol.
type FundamentalVerdict struct {
	Qualified bool
	Current   CurrentEarnings
	Annual    bool
	Metrics   model.FinancialMetrics
}

// CheckCurrentEarnings passes when quarterly EPS growth or quarterly revenue growth
// reaches the threshold. One absent value does not fail the check on its own.
func CheckCurrentEarnings(m *model.FinancialMetrics, cfg config.FundamentalConfig) CurrentEarnings {
	var ce CurrentEarnings
	if m == nil {
		return ce
	}
	ce.EPSGrowth = m.EPSGrowthQ
	ce.RevenueGrowth = m.RevenueGrowthQ
	epsOK := m.EPSGrowthQ != nil && *m.EPSGrowthQ >= cfg.EPSGrowth
	revOK := m.RevenueGrowthQ != nil && *m.RevenueGrowthQ >= cfg.RevenueGrowth
	ce.Pass = epsOK || revOK
	return ce
}

// CheckAnnualEarnings is the CAN-SLIM "A" check: ROE at or above the threshold.
func CheckAnnualEarnings(m *model.FinancialMetrics, cfg config.FundamentalConfig) bool {
	return m != nil && m.ROE != nil && *m.ROE >= cfg.ROE
}

// EvaluateFundamentals requires both checks. Metrics are returned whatever the verdict.
func EvaluateFundamentals(m *model.FinancialMetrics, cfg config.FundamentalConfig) FundamentalVerdict {
	v := FundamentalVerdict{
		Current: CheckCurrentEarnings(m, cfg),
		Annual:  CheckAnnualEarnings(m, cfg),
	}
	if m != nil {
		v.Metrics = *m
	}
	v.Qualified = v.Current.Pass && v.Annual
	return v
}
