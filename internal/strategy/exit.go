package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"CanSlimHunter/internal/config"
	"CanSlimHunter/internal/model"
)

// CalculateExit derives profit-target and stop-loss levels from the entry price and
// the short and long SMAs. Prices are rounded to cents.
func CalculateExit(price, smaShort, smaLong float64, cfg config.ExitConfig) model.ExitStrategy {
	p := decimal.NewFromFloat(price)
	one := decimal.NewFromInt(1)

	target := p.Mul(one.Add(decimal.NewFromFloat(cfg.ProfitTargetPct))).Round(2)
	stop := p.Mul(one.Sub(decimal.NewFromFloat(cfg.StopLossPct))).Round(2)
	maStop := decimal.NewFromFloat(smaLong).Mul(one.Sub(decimal.NewFromFloat(cfg.MAStopLossPct))).Round(2)

	profitPct := pct(cfg.ProfitTargetPct)
	stopPct := pct(cfg.StopLossPct)
	maPct := pct(cfg.MAStopLossPct)

	profitCond := fmt.Sprintf("Price closes below the %d-day moving average ($%.2f)", cfg.MAShort, smaShort)
	profitReason := fmt.Sprintf("Take profits near +%s or once the %d-day moving average breaks", profitPct, cfg.MAShort)
	stopCond := fmt.Sprintf("Price falls %s below entry ($%s) or more than %s below the %d-day moving average ($%s)",
		stopPct, stop.StringFixed(2), maPct, cfg.MALong, maStop.StringFixed(2))
	stopReason := fmt.Sprintf("Cut losses at -%s from entry or on a decisive break of the %d-day moving average", stopPct, cfg.MALong)

	return model.ExitStrategy{
		ProfitTargetPrice: target.InexactFloat64(),
		ProfitCondition:   profitCond,
		ProfitReason:      profitReason,
		StopLossPrice:     stop.InexactFloat64(),
		MAStopPrice:       maStop.InexactFloat64(),
		StopLossCondition: stopCond,
		StopLossReason:    stopReason,
	}
}

// pct formats a fraction as a whole-or-decimal percentage, e.g. 0.2 -> "20%", 0.075 -> "7.5%".
func pct(f float64) string {
	return decimal.NewFromFloat(f).Shift(2).String() + "%"
}
