package collector

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"CanSlimHunter/internal/model"
)

// Paced spaces fundamental fetches at least interval apart. The first call is not delayed.
// The gap is measured from when the previous fetch returned, so the start of one fetch is
// always at least interval after the start of the one before it.
type Paced struct {
	inner    FundamentalProvider
	interval time.Duration
	limiter  *rate.Limiter

	mu   sync.Mutex
	last time.Time
}

// NewPaced wraps inner. A zero interval disables pacing.
func NewPaced(inner FundamentalProvider, interval time.Duration) *Paced {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Paced{inner: inner, interval: interval, limiter: rate.NewLimiter(limit, 1)}
}

func (p *Paced) FetchFinancialData(ctx context.Context, symbol string) (*model.FinancialMetrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := p.waitGap(ctx); err != nil {
		return nil, err
	}
	defer func() { p.last = time.Now() }()
	return p.inner.FetchFinancialData(ctx, symbol)
}

// waitGap blocks until interval has elapsed on the clock since the previous fetch returned.
func (p *Paced) waitGap(ctx context.Context) error {
	if p.interval <= 0 || p.last.IsZero() {
		return nil
	}
	for {
		remaining := p.interval - time.Since(p.last)
		if remaining <= 0 {
			return nil
		}
		t := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
