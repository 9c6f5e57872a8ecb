package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"CanSlimHunter/internal/model"
	"CanSlimHunter/internal/notifier"
)

// publish builds and delivers an alert for each qualifier in order. Chart, name and
// news failures degrade the alert; they never stop the run.
func (r *Runner) publish(ctx context.Context, log *zap.Logger, res *model.ScreeningResult, rep *Report) {
	for i := range res.Qualifiers {
		if ctx.Err() != nil {
			log.Warn("publishing interrupted", zap.Error(ctx.Err()))
			return
		}
		q := &res.Qualifiers[i]
		alert := r.buildAlert(ctx, log, q, res.BenchmarkReturn)
		rep.Alerts++

		if r.cfg.DryRun || r.deps.Notifier == nil {
			log.Info("dry run alert", zap.String("symbol", q.Symbol), zap.String("message", notifier.FormatText(alert)))
			continue
		}
		if err := r.deps.Notifier.Notify(ctx, alert); err != nil {
			rep.NotifyFailed++
			log.Error("notify failed", zap.String("symbol", q.Symbol), zap.Error(err))
			continue
		}
		rep.Notified++
	}
}

func (r *Runner) buildAlert(ctx context.Context, log *zap.Logger, q *model.Qualifier, benchReturn float64) *model.Alert {
	name := q.Symbol
	if r.deps.Profiles != nil {
		if n, err := r.deps.Profiles.FetchCompanyName(ctx, q.Symbol); err != nil {
			log.Debug("company name unavailable", zap.String("symbol", q.Symbol), zap.Error(err))
		} else if n != "" {
			name = n
		}
	}

	alert := &model.Alert{
		Symbol:           q.Symbol,
		CompanyName:      name,
		CurrentPrice:     q.Price,
		AvgVolume50:      q.AvgVolume50,
		Metrics:          q.Metrics,
		Exit:             q.Exit,
		RelativeStrength: RelativeStrength(q.Return1Y, benchReturn, r.cfg.DataSource.Benchmark),
	}

	if r.deps.Charts != nil && q.Series != nil {
		path, err := r.deps.Charts.Render(q.Series, name+" - CAN-SLIM Stock Chart")
		if err != nil {
			log.Warn("chart failed", zap.String("symbol", q.Symbol), zap.Error(err))
		} else {
			alert.ChartPath = path
		}
	}

	if r.deps.News != nil && r.cfg.News.MaxItems > 0 {
		items, err := r.deps.News.FetchNews(ctx, q.Symbol, r.cfg.News.MaxItems)
		if err != nil {
			log.Debug("news unavailable", zap.String("symbol", q.Symbol), zap.Error(err))
		}
		if len(items) > r.cfg.News.MaxItems {
			items = items[:r.cfg.News.MaxItems]
		}
		alert.News = items
	}
	return alert
}

// RelativeStrength formats a symbol's 1-year return against the benchmark's,
// e.g. "+32.5% vs SPY (stock +45.0%, SPY +12.5%)".
func RelativeStrength(symbolReturn, benchReturn float64, benchmark string) string {
	return fmt.Sprintf("%+.1f%% vs %s (stock %+.1f%%, %s %+.1f%%)",
		(symbolReturn-benchReturn)*100, benchmark, symbolReturn*100, benchmark, benchReturn*100)
}
