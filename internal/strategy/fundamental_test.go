package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanSlimHunter/internal/config"
	"CanSlimHunter/internal/model"
)

var fundCfg = config.FundamentalConfig{EPSGrowth: 0.20, RevenueGrowth: 0.20, ROE: 0.15}

func metrics(eps, rev, roe *float64) *model.FinancialMetrics {
	return &model.FinancialMetrics{EPSGrowthQ: eps, RevenueGrowthQ: rev, ROE: roe, Sector: "Technology", Industry: "Software"}
}

func TestCheckCurrentEarnings(t *testing.T) {
	f := model.Float
	tests := []struct {
		name string
		m    *model.FinancialMetrics
		want bool
	}{
		{"eps meets", metrics(f(0.25), f(0.05), nil), true},
		{"revenue meets", metrics(f(0.05), f(0.25), nil), true},
		{"both meet", metrics(f(0.30), f(0.30), nil), true},
		{"eps exactly 20%", metrics(f(0.20), f(0.0), nil), true},
		{"revenue exactly 20%", metrics(f(0.0), f(0.20), nil), true},
		{"neither meets", metrics(f(0.05), f(0.05), nil), false},
		{"eps absent revenue meets", metrics(nil, f(0.21), nil), true},
		{"revenue absent eps meets", metrics(f(0.21), nil, nil), true},
		{"eps absent revenue low", metrics(nil, f(0.1), nil), false},
		{"both absent", metrics(nil, nil, f(0.5)), false},
		{"nil metrics", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckCurrentEarnings(tt.m, fundCfg)
			assert.Equal(t, tt.want, got.Pass)
			if tt.m != nil {
				assert.Equal(t, tt.m.EPSGrowthQ, got.EPSGrowth)
				assert.Equal(t, tt.m.RevenueGrowthQ, got.RevenueGrowth)
			}
		})
	}
}

func TestCheckAnnualEarnings(t *testing.T) {
	f := model.Float
	assert.True(t, CheckAnnualEarnings(metrics(nil, nil, f(0.18)), fundCfg))
	assert.True(t, CheckAnnualEarnings(metrics(nil, nil, f(0.15)), fundCfg))
	assert.False(t, CheckAnnualEarnings(metrics(nil, nil, f(0.1499)), fundCfg))
	assert.False(t, CheckAnnualEarnings(metrics(f(1), f(1), nil), fundCfg))
	assert.False(t, CheckAnnualEarnings(nil, fundCfg))
}

func TestEvaluateFundamentals(t *testing.T) {
	f := model.Float

	t.Run("eps via OR and roe qualifies", func(t *testing.T) {
		v := EvaluateFundamentals(metrics(f(0.25), f(0.05), f(0.18)), fundCfg)
		assert.True(t, v.Qualified)
		assert.True(t, v.Current.Pass)
		assert.True(t, v.Annual)
	})

	t.Run("neither growth meets", func(t *testing.T) {
		v := EvaluateFundamentals(metrics(f(0.05), f(0.05), f(0.18)), fundCfg)
		assert.False(t, v.Qualified)
		assert.False(t, v.Current.Pass)
		assert.True(t, v.Annual)
	})

	t.Run("growth meets but roe low", func(t *testing.T) {
		v := EvaluateFundamentals(metrics(f(0.5), f(0.5), f(0.1)), fundCfg)
		assert.False(t, v.Qualified)
		assert.True(t, v.Current.Pass)
	})

	t.Run("metrics returned regardless of verdict", func(t *testing.T) {
		v := EvaluateFundamentals(metrics(f(0.05), nil, f(0.1)), fundCfg)
		require.False(t, v.Qualified)
		require.NotNil(t, v.Metrics.EPSGrowthQ)
		assert.Equal(t, 0.05, *v.Metrics.EPSGrowthQ)
		assert.Nil(t, v.Metrics.RevenueGrowthQ)
		assert.Equal(t, "Technology", v.Metrics.Sector)
		assert.Equal(t, "Software", v.Metrics.Industry)
	})
}
