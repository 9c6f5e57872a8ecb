package collector

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"CanSlimHunter/internal/model"
)

// RetryPolicy controls retries of timed-out provider calls.
// Attempt n (1-based) that times out waits BaseDelay * 2^(n-1) before the next one.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns three attempts with a one-second base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithRetry runs fn until it succeeds, fails with anything other than ErrTimeout,
// or exhausts the policy. The last error is returned unchanged.
func WithRetry[T any](ctx context.Context, p RetryPolicy, logger *zap.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var zero T
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := p.BaseDelay * time.Duration(1<<(i-1))
			logger.Warn("retrying after timeout",
				zap.String("op", op),
				zap.Int("attempt", i+1),
				zap.Int("max_attempts", attempts),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			if err := p.sleep(ctx, delay); err != nil {
				return zero, err
			}
		}
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !errors.Is(err, ErrTimeout) {
			return zero, err
		}
	}
	return zero, lastErr
}

// RetryingPrices retries timed-out price fetches.
type RetryingPrices struct {
	Inner  PriceProvider
	Policy RetryPolicy
	Logger *zap.Logger
}

func (r *RetryingPrices) FetchPriceSeries(ctx context.Context, symbol string, lookbackDays int) (*model.PriceSeries, error) {
	return WithRetry(ctx, r.Policy, r.Logger, "price "+symbol, func(ctx context.Context) (*model.PriceSeries, error) {
		return r.Inner.FetchPriceSeries(ctx, symbol, lookbackDays)
	})
}

// RetryingFundamentals retries timed-out fundamental fetches.
type RetryingFundamentals struct {
	Inner  FundamentalProvider
	Policy RetryPolicy
	Logger *zap.Logger
}

func (r *RetryingFundamentals) FetchFinancialData(ctx context.Context, symbol string) (*model.FinancialMetrics, error) {
	return WithRetry(ctx, r.Policy, r.Logger, "fundamentals "+symbol, func(ctx context.Context) (*model.FinancialMetrics, error) {
		return r.Inner.FetchFinancialData(ctx, symbol)
	})
}
