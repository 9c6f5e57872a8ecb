package calculator

import (
	"errors"
	"fmt"
	"math"

	"CanSlimHunter/internal/model"
)

// Calculate52WeekHigh returns the highest close over the trailing window bars.
// A series shorter than window has no defined 52-week high.
func Calculate52WeekHigh(bars []model.OHLCV, window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	n := len(bars)
	if n < window {
		return 0, fmt.Errorf("52-week high over %d bars (need %d): %w", n, window, ErrInsufficientData)
	}
	high := math.Inf(-1)
	for i := n - window; i < n; i++ {
		if bars[i].Close > high {
			high = bars[i].Close
		}
	}
	return high, nil
}

// TrailingReturn returns (last - first) / first over the trailing window bars.
func TrailingReturn(bars []model.OHLCV, window int) (float64, error) {
	if window < 2 {
		return 0, errors.New("window must be at least 2")
	}
	n := len(bars)
	if n < window {
		return 0, fmt.Errorf("return over %d bars (need %d): %w", n, window, ErrInsufficientData)
	}
	first := bars[n-window].Close
	if first <= 0 {
		return 0, fmt.Errorf("return base price %v is not positive", first)
	}
	return (bars[n-1].Close - first) / first, nil
}
