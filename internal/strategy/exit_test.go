package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"CanSlimHunter/internal/config"
)

var exitCfg = config.ExitConfig{ProfitTargetPct: 0.20, StopLossPct: 0.07, MAStopLossPct: 0.03, MAShort: 10, MALong: 50}

func TestCalculateExit_KnownPrice(t *testing.T) {
	e := CalculateExit(495.50, 480.25, 450, exitCfg)
	assert.InDelta(t, 594.60, e.ProfitTargetPrice, 0.001)
	assert.InDelta(t, 460.82, e.StopLossPrice, 0.001)
	assert.InDelta(t, 436.50, e.MAStopPrice, 0.001)
}

func TestCalculateExit_MultiplicativeRelationship(t *testing.T) {
	for _, price := range []float64{10.01, 12.34, 57.89, 100, 250.5, 999.99, 3456.78} {
		e := CalculateExit(price, price, price, exitCfg)
		assert.InDelta(t, price*1.20, e.ProfitTargetPrice, 0.01, "target for %v", price)
		assert.InDelta(t, price*0.93, e.StopLossPrice, 0.01, "stop for %v", price)
		assert.Greater(t, e.ProfitTargetPrice, price)
		assert.Less(t, e.StopLossPrice, price)
	}
}

func TestCalculateExit_ConfigurablePercentages(t *testing.T) {
	cfg := exitCfg
	cfg.ProfitTargetPct = 0.25
	cfg.StopLossPct = 0.08
	e := CalculateExit(100, 98, 95, cfg)
	assert.InDelta(t, 125.0, e.ProfitTargetPrice, 0.001)
	assert.InDelta(t, 92.0, e.StopLossPrice, 0.001)
	assert.Contains(t, e.StopLossCondition, "8% below entry")
	assert.Contains(t, e.ProfitReason, "+25%")
}

func TestCalculateExit_ConditionText(t *testing.T) {
	e := CalculateExit(100, 98.766, 95, exitCfg)
	assert.Contains(t, e.ProfitCondition, "10-day moving average ($98.77)")
	assert.Contains(t, e.StopLossCondition, "7% below entry ($93.00)")
	assert.Contains(t, e.StopLossCondition, "3% below the 50-day moving average ($92.15)")
	assert.NotEmpty(t, e.ProfitReason)
	assert.NotEmpty(t, e.StopLossReason)
}

func TestPct(t *testing.T) {
	assert.Equal(t, "20%", pct(0.2))
	assert.Equal(t, "7.5%", pct(0.075))
	assert.Equal(t, "3%", pct(0.03))
}
