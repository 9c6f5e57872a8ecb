package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanSlimHunter/internal/config"
	"CanSlimHunter/internal/model"
)

const benchReturn = 0.10

func techCfg() config.TechnicalConfig {
	return config.TechnicalConfig{
		MinPrice:           10,
		MinAvgVolume:       200_000,
		VolumePeriod:       50,
		TrendPeriod:        200,
		NearHighPct:        0.85,
		TradingDaysPerYear: 252,
	}
}

// strong returns indicators that pass every step against benchReturn.
func strong() model.Indicators {
	return model.Indicators{
		CurrentPrice: 100, HasPrice: true,
		AvgVolume50: 300_000, HasAvgVolume: true,
		SMA200: 90, HasSMA200: true,
		High52w: 105, HasHigh52w: true,
		Return1Y: 0.30, HasReturn1Y: true,
	}
}

func TestCheckTechnical_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ind *model.Indicators)
		want   model.SkipReason
	}{
		{"all criteria met", func(ind *model.Indicators) {}, model.SkipNone},
		{"price 9.99 volume 300k", func(ind *model.Indicators) { ind.CurrentPrice = 9.99; ind.SMA200 = 9 }, model.SkipPrice},
		{"price exactly 10", func(ind *model.Indicators) { ind.CurrentPrice = 10; ind.SMA200 = 9; ind.High52w = 10 }, model.SkipPrice},
		{"price just above 10", func(ind *model.Indicators) { ind.CurrentPrice = 10.01; ind.SMA200 = 9; ind.High52w = 10.5 }, model.SkipNone},
		{"price 50 volume 150k", func(ind *model.Indicators) { ind.CurrentPrice = 50; ind.AvgVolume50 = 150_000 }, model.SkipVolume},
		{"volume exactly 200k", func(ind *model.Indicators) { ind.AvgVolume50 = 200_000 }, model.SkipVolume},
		{"volume 200001", func(ind *model.Indicators) { ind.AvgVolume50 = 200_001 }, model.SkipNone},
		{"price equals SMA200", func(ind *model.Indicators) { ind.SMA200 = 100 }, model.SkipTrend},
		{"price below SMA200", func(ind *model.Indicators) { ind.SMA200 = 120 }, model.SkipTrend},
		{"exactly 85% of high", func(ind *model.Indicators) { ind.CurrentPrice = 85; ind.SMA200 = 80; ind.High52w = 100 }, model.SkipNone},
		{"just under 85% of high", func(ind *model.Indicators) { ind.CurrentPrice = 84.99; ind.SMA200 = 80; ind.High52w = 100 }, model.SkipNearHigh},
		{"return equals benchmark", func(ind *model.Indicators) { ind.Return1Y = benchReturn }, model.SkipRelativeStrength},
		{"return below benchmark", func(ind *model.Indicators) { ind.Return1Y = -0.05 }, model.SkipRelativeStrength},
		{"no price", func(ind *model.Indicators) { ind.HasPrice = false }, model.SkipPrice},
		{"short history for volume", func(ind *model.Indicators) { ind.HasAvgVolume = false }, model.SkipVolume},
		{"short history for SMA200", func(ind *model.Indicators) { ind.HasSMA200 = false; ind.SMA200 = 0 }, model.SkipTrend},
		{"short history for 52w high", func(ind *model.Indicators) { ind.HasHigh52w = false; ind.High52w = 0 }, model.SkipNearHigh},
		{"short history for 1y return", func(ind *model.Indicators) { ind.HasReturn1Y = false }, model.SkipRelativeStrength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := strong()
			tt.mutate(&ind)
			assert.Equal(t, tt.want, CheckTechnical(ind, benchReturn, techCfg()))
		})
	}
}

func TestFilterTechnical_OrderAndCounts(t *testing.T) {
	cheap := strong()
	cheap.CurrentPrice = 5
	thin := strong()
	thin.AvgVolume50 = 1000
	weak := strong()
	weak.Return1Y = 0.01
	empty := model.Indicators{}

	cands := []Candidate{
		{Index: 0, Symbol: "AAA", Indicators: strong()},
		{Index: 1, Symbol: "CHEAP", Indicators: cheap},
		{Index: 2, Symbol: "BBB", Indicators: strong()},
		{Index: 3, Symbol: "THIN", Indicators: thin},
		{Index: 4, Symbol: "WEAK", Indicators: weak},
		{Index: 5, Symbol: "NONE", Indicators: empty},
		{Index: 6, Symbol: "AAA", Indicators: strong()},
	}

	res := FilterTechnical(cands, benchReturn, techCfg())

	require.Len(t, res.Passed, 3)
	assert.Equal(t, []int{0, 2, 6}, []int{res.Passed[0].Index, res.Passed[1].Index, res.Passed[2].Index})
	assert.Equal(t, 2, res.Removed[model.SkipPrice])
	assert.Equal(t, 1, res.Removed[model.SkipVolume])
	assert.Equal(t, 1, res.Removed[model.SkipRelativeStrength])
	assert.Len(t, res.Excluded, 4)
	assert.Equal(t, len(cands), len(res.Passed)+len(res.Excluded))

	for _, ex := range res.Excluded {
		assert.Equal(t, CheckTechnical(ex.Indicators, benchReturn, techCfg()), ex.Reason, ex.Symbol)
	}
}

func TestFilterTechnical_Empty(t *testing.T) {
	res := FilterTechnical(nil, benchReturn, techCfg())
	assert.Empty(t, res.Passed)
	assert.Empty(t, res.Excluded)
}
