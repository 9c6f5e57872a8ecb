package strategy

import (
	"CanSlimHunter/internal/config"
	"CanSlimHunter/internal/model"
)

// nearHighEpsilon keeps a price at exactly pct × high on the passing side despite float rounding.
const nearHighEpsilon = 1e-9

// Candidate is one input occurrence entering the technical filter.
type Candidate struct {
	Index      int // position in the input list
	Symbol     string
	Indicators model.Indicators
}

// Exclusion records the step that removed a candidate.
type Exclusion struct {
	Candidate
	Reason model.SkipReason
}

// TechnicalResult is the outcome of FilterTechnical.
type TechnicalResult struct {
	Passed   []Candidate // input order preserved
	Excluded []Exclusion // in the order steps removed them
	Removed  map[model.SkipReason]int
}

type technicalStep struct {
	reason model.SkipReason
	pass   func(ind model.Indicators) bool
}

func technicalSteps(cfg config.TechnicalConfig, benchmarkReturn float64) []technicalStep {
	return []technicalStep{
		// Step 1: price floor, exclusive
		{model.SkipPrice, func(ind model.Indicators) bool {
			return ind.HasPrice && ind.CurrentPrice > cfg.MinPrice
		}},
		// Step 2: volume floor, exclusive
		{model.SkipVolume, func(ind model.Indicators) bool {
			return ind.HasAvgVolume && ind.AvgVolume50 > cfg.MinAvgVolume
		}},
		// Step 3: strictly above the long SMA
		{model.SkipTrend, func(ind model.Indicators) bool {
			return ind.HasSMA200 && ind.CurrentPrice > ind.SMA200
		}},
		// Step 4: within reach of the 52-week high, inclusive
		{model.SkipNearHigh, func(ind model.Indicators) bool {
			return ind.HasHigh52w && ind.CurrentPrice >= cfg.NearHighPct*ind.High52w-nearHighEpsilon
		}},
		// Step 5: beat the benchmark strictly
		{model.SkipRelativeStrength, func(ind model.Indicators) bool {
			return ind.HasReturn1Y && ind.Return1Y > benchmarkReturn
		}},
	}
}

// FilterTechnical runs the five technical steps in sequence. Each step only sees the
// survivors of the previous one; a missing indicator fails the first step that needs it.
func FilterTechnical(cands []Candidate, benchmarkReturn float64, cfg config.TechnicalConfig) TechnicalResult {
	res := TechnicalResult{Removed: make(map[model.SkipReason]int)}
	surviving := cands
	for _, step := range technicalSteps(cfg, benchmarkReturn) {
		next := make([]Candidate, 0, len(surviving))
		for _, c := range surviving {
			if step.pass(c.Indicators) {
				next = append(next, c)
				continue
			}
			res.Excluded = append(res.Excluded, Exclusion{Candidate: c, Reason: step.reason})
			res.Removed[step.reason]++
		}
		surviving = next
	}
	res.Passed = surviving
	return res
}

// CheckTechnical returns the first step a single symbol fails, or SkipNone.
func CheckTechnical(ind model.Indicators, benchmarkReturn float64, cfg config.TechnicalConfig) model.SkipReason {
	for _, step := range technicalSteps(cfg, benchmarkReturn) {
		if !step.pass(ind) {
			return step.reason
		}
	}
	return model.SkipNone
}
