package model

// ExitStrategy holds the profit-target and stop-loss levels computed for a qualifier.
// The condition texts are for the investor to check; nothing monitors them.
type ExitStrategy struct {
	ProfitTargetPrice float64
	ProfitCondition   string
	ProfitReason      string
	StopLossPrice     float64
	MAStopPrice       float64 // long SMA less the MA stop percentage
	StopLossCondition string
	StopLossReason    string
}
