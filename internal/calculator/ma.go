package calculator

import (
	"errors"
	"fmt"

	"CanSlimHunter/internal/model"
)

// ErrInsufficientData is returned when a series is shorter than the window an indicator needs.
var ErrInsufficientData = errors.New("not enough data")

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, fmt.Errorf("sma(%d) over %d values: %w", period, len(values), ErrInsufficientData)
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// CloseSMA returns the simple moving average of close prices over period bars.
func CloseSMA(bars []model.OHLCV, period int) (float64, error) {
	return CalculateSMA(extractCloses(bars), period)
}

// AverageVolume returns the mean volume of the last period bars.
func AverageVolume(bars []model.OHLCV, period int) (float64, error) {
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		volumes[i] = b.Volume
	}
	return CalculateSMA(volumes, period)
}

// CurrentPrice returns the last close.
func CurrentPrice(bars []model.OHLCV) (float64, error) {
	if len(bars) == 0 {
		return 0, fmt.Errorf("current price: %w", ErrInsufficientData)
	}
	return bars[len(bars)-1].Close, nil
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// RollingSMA returns the SMA ending at every index from period-1 onward, so
// out[i] averages values[i : i+period]. A short series yields nil.
func RollingSMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}
