package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"CanSlimHunter/internal/calculator"
	"CanSlimHunter/internal/collector"
	"CanSlimHunter/internal/config"
	"CanSlimHunter/internal/model"
	"CanSlimHunter/internal/notifier"
	"CanSlimHunter/internal/strategy"
)

// ErrBenchmarkUnavailable aborts a run whose benchmark return cannot be computed.
var ErrBenchmarkUnavailable = errors.New("benchmark unavailable")

// ChartRenderer renders a price chart and returns a file reference.
type ChartRenderer interface {
	Render(series *model.PriceSeries, title string) (string, error)
}

// Deps are the collaborators of a Runner. News, Charts and Notifier may be nil.
type Deps struct {
	Prices       collector.PriceProvider
	Fundamentals collector.FundamentalProvider
	Profiles     collector.ProfileProvider
	News         collector.NewsProvider
	Charts       ChartRenderer
	Notifier     notifier.Notifier
}

// Runner executes one screening pass over a ticker list.
type Runner struct {
	deps   Deps
	cfg    *config.Config
	logger *zap.Logger
	state  State
}

// New creates a Runner from already-composed collaborators.
func New(deps Deps, cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{deps: deps, cfg: cfg, logger: logger}
}

// NewFromProvider wraps p with retries on timeouts and, for fundamentals, call pacing
// inside the retry so that every attempt is spaced.
func NewFromProvider(p collector.Provider, news collector.NewsProvider, charts ChartRenderer, n notifier.Notifier, cfg *config.Config, logger *zap.Logger) *Runner {
	policy := collector.RetryPolicy{
		MaxAttempts: cfg.DataSource.MaxRetries,
		BaseDelay:   cfg.DataSource.RetryBaseDelay,
	}
	deps := Deps{
		Prices:       &collector.RetryingPrices{Inner: p, Policy: policy, Logger: logger},
		Fundamentals: &collector.RetryingFundamentals{
			Inner:  collector.NewPaced(p, cfg.DataSource.APICallDelay),
			Policy: policy,
			Logger: logger,
		},
		Profiles: p,
		News:     news,
		Charts:   charts,
		Notifier: n,
	}
	return New(deps, cfg, logger)
}

// State reports where the last run stopped.
func (r *Runner) State() State { return r.state }

// Report is the full outcome of Run.
type Report struct {
	RunID        string
	Benchmark    string
	Result       *model.ScreeningResult
	Alerts       int
	Notified     int
	NotifyFailed int
	DryRun       bool
	Elapsed      time.Duration
}

// Run screens tickers and publishes an alert per qualifier.
func (r *Runner) Run(ctx context.Context, tickers []string) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID))
	log.Info("run started", zap.Int("tickers", len(tickers)), zap.String("benchmark", r.cfg.DataSource.Benchmark))

	res, err := r.screen(ctx, log, tickers)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		RunID:     runID,
		Benchmark: r.cfg.DataSource.Benchmark,
		Result:    res,
		DryRun:    r.cfg.DryRun,
	}
	r.publish(ctx, log, res, rep)
	rep.Elapsed = time.Since(start)

	log.Info("run finished",
		zap.Int("processed", res.Processed),
		zap.Int("qualified", res.Qualified),
		zap.Int("skipped", res.Skipped),
		zap.Int("notified", rep.Notified),
		zap.Int("notify_failed", rep.NotifyFailed),
		zap.Duration("elapsed", rep.Elapsed))
	return rep, nil
}

// Screen runs the screening pipeline only, without charts or notifications.
func (r *Runner) Screen(ctx context.Context, tickers []string) (*model.ScreeningResult, error) {
	return r.screen(ctx, r.logger.With(zap.String("run_id", uuid.NewString())), tickers)
}

type priceEntry struct {
	series *model.PriceSeries
	err    error
}

func (r *Runner) screen(ctx context.Context, log *zap.Logger, tickers []string) (*model.ScreeningResult, error) {
	r.state = StateInit
	tech := r.cfg.Screening.Technical
	periods := calculator.Periods{
		Volume:     tech.VolumePeriod,
		Trend:      tech.TrendPeriod,
		YearWindow: tech.TradingDaysPerYear,
	}

	benchReturn, err := r.benchmarkReturn(ctx, tech.TradingDaysPerYear)
	if err != nil {
		return nil, err
	}
	log.Info("benchmark return", zap.String("symbol", r.cfg.DataSource.Benchmark), zap.Float64("return_1y", benchReturn))

	outcomes := make([]model.SkipReason, len(tickers))
	skip := func(i int, reason model.SkipReason, fields ...zap.Field) {
		outcomes[i] = reason
		log.Warn("symbol skipped", append([]zap.Field{zap.String("symbol", tickers[i]), zap.String("reason", string(reason))}, fields...)...)
	}

	// Technical screening
	if err := r.state.advance(StateTechnicalScreening); err != nil {
		return nil, err
	}
	cache := make(map[string]priceEntry)
	var cands []strategy.Candidate
	for i, sym := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, ok := cache[sym]
		if !ok {
			e.series, e.err = r.deps.Prices.FetchPriceSeries(ctx, sym, r.cfg.DataSource.LookbackDays)
			cache[sym] = e
		}
		if e.err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			skip(i, fetchSkipReason(e.err, model.SkipNoPriceData), zap.Error(e.err))
			continue
		}
		cands = append(cands, strategy.Candidate{
			Index:      i,
			Symbol:     sym,
			Indicators: calculator.Indicators(e.series.Bars, periods),
		})
	}

	tr := strategy.FilterTechnical(cands, benchReturn, tech)
	for _, ex := range tr.Excluded {
		skip(ex.Index, ex.Reason)
	}
	log.Info("technical screening done",
		zap.Int("input", len(tickers)),
		zap.Int("with_prices", len(cands)),
		zap.Int("passed", len(tr.Passed)),
		zap.Int("price", tr.Removed[model.SkipPrice]),
		zap.Int("volume", tr.Removed[model.SkipVolume]),
		zap.Int("trend", tr.Removed[model.SkipTrend]),
		zap.Int("near_high", tr.Removed[model.SkipNearHigh]),
		zap.Int("relative_strength", tr.Removed[model.SkipRelativeStrength]))

	// Fundamental screening
	if err := r.state.advance(StateFundamentalScreening); err != nil {
		return nil, err
	}
	qualifiers := make(map[int]model.Qualifier)
	for _, c := range tr.Passed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := r.deps.Fundamentals.FetchFinancialData(ctx, c.Symbol)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			skip(c.Index, fetchSkipReason(err, model.SkipNoFundamentals), zap.Error(err))
			continue
		}
		if m.Empty() {
			skip(c.Index, model.SkipNoFundamentals)
			continue
		}

		v := strategy.EvaluateFundamentals(m, r.cfg.Screening.Fundamental)
		if !v.Qualified {
			skip(c.Index, model.SkipNotQualified,
				zap.Bool("current_earnings", v.Current.Pass),
				zap.Bool("annual_earnings", v.Annual))
			continue
		}

		series := cache[c.Symbol].series
		price := c.Indicators.CurrentPrice
		smaShort := smaOr(series.Bars, r.cfg.Exit.MAShort, price)
		smaLong := smaOr(series.Bars, r.cfg.Exit.MALong, price)
		q := model.Qualifier{
			Symbol:      c.Symbol,
			Price:       price,
			AvgVolume50: c.Indicators.AvgVolume50,
			SMA10:       smaShort,
			SMA50:       smaLong,
			Return1Y:    c.Indicators.Return1Y,
			Metrics:     v.Metrics,
			Exit:        strategy.CalculateExit(price, smaShort, smaLong, r.cfg.Exit),
			Series:      series,
		}
		qualifiers[c.Index] = q
		log.Info("symbol qualified",
			zap.String("symbol", c.Symbol),
			zap.Float64("price", price),
			zap.Float64("profit_target", q.Exit.ProfitTargetPrice),
			zap.Float64("stop_loss", q.Exit.StopLossPrice))
	}

	// Finalizing
	if err := r.state.advance(StateFinalizing); err != nil {
		return nil, err
	}
	res := &model.ScreeningResult{
		TechnicalPass:   len(tr.Passed),
		BenchmarkReturn: benchReturn,
	}
	for i, sym := range tickers {
		if q, ok := qualifiers[i]; ok {
			res.Qualifiers = append(res.Qualifiers, q)
			res.Record(model.Outcome{Symbol: sym})
			continue
		}
		res.Record(model.Outcome{Symbol: sym, Reason: outcomes[i]})
	}

	if err := r.state.advance(StateDone); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) benchmarkReturn(ctx context.Context, window int) (float64, error) {
	sym := r.cfg.DataSource.Benchmark
	s, err := r.deps.Prices.FetchPriceSeries(ctx, sym, r.cfg.DataSource.LookbackDays)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrBenchmarkUnavailable, sym, err)
	}
	ret, err := calculator.TrailingReturn(s.Bars, window)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrBenchmarkUnavailable, sym, err)
	}
	return ret, nil
}

// fetchSkipReason maps a provider error to a skip. Rate limiting is reported apart
// from plain unavailability.
func fetchSkipReason(err error, unavailable model.SkipReason) model.SkipReason {
	if errors.Is(err, collector.ErrRateLimited) {
		return model.SkipRateLimited
	}
	return unavailable
}

func smaOr(bars []model.OHLCV, period int, fallback float64) float64 {
	v, err := calculator.CloseSMA(bars, period)
	if err != nil {
		return fallback
	}
	return v
}
