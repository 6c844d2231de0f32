package runner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/state"
	"SignalSentinel/internal/strategy"
)

// Analyzer produces the indicator analysis for one ticker.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*model.TickerAnalysis, error)
}

// Runner executes evaluation runs over the configured tickers.
type Runner struct {
	Analyzer    Analyzer
	Store       *state.Store
	Notifier    notifier.Notifier
	Recorder    recorder.Recorder
	Concurrency int

	running atomic.Bool
	log     zerolog.Logger
}

// New creates a Runner. Concurrency below 1 means one ticker at a time.
func New(a Analyzer, store *state.Store, n notifier.Notifier, rec recorder.Recorder, concurrency int, log zerolog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{
		Analyzer:    a,
		Store:       store,
		Notifier:    n,
		Recorder:    rec,
		Concurrency: concurrency,
		log:         log.With().Str("component", "runner").Logger(),
	}
}

// RunOnce analyses every ticker, advances the persisted state once, and sends the
// report. A failed ticker is reported and skipped. Delivery failures are logged and
// swallowed; a persistence failure is returned wrapping model.ErrPersistence after
// the report has been sent. Overlapping calls fail with model.ErrRunInProgress.
func (r *Runner) RunOnce(ctx context.Context) (*model.RunReport, error) {
	if !r.running.CompareAndSwap(false, true) {
		metrics.RunsTotal.WithLabelValues("busy").Inc()
		return nil, model.ErrRunInProgress
	}
	defer r.running.Store(false)

	report := &model.RunReport{ID: uuid.NewString(), StartedAt: time.Now()}
	log := r.log.With().Str("run_id", report.ID).Logger()
	log.Info().Msg("run started")

	tickers := r.Store.Tickers()
	report.Tickers = r.analyze(ctx, tickers)
	for _, t := range report.Tickers {
		if t.Err != nil {
			metrics.TickerErrorsTotal.WithLabelValues(t.Symbol).Inc()
			log.Error().Err(t.Err).Str("symbol", t.Symbol).Msg("analysis failed")
		}
	}

	// evaluation and the state write complete even if shutdown cancels ctx mid-run
	persistErr := r.Store.Update(context.WithoutCancel(ctx), func(m model.StateMap) error {
		for i := range report.Tickers {
			t := &report.Tickers[i]
			if t.Err != nil {
				continue
			}
			t.Before = m[t.Symbol]
			t.Decision = strategy.Evaluate(t.Before, t.Analysis.Snapshot)
			m[t.Symbol] = t.Decision.Next
		}
		return nil
	})
	report.Persisted = persistErr == nil
	report.PersistErr = persistErr
	report.FinishedAt = time.Now()

	for _, t := range report.Tickers {
		if t.Err != nil || t.Decision.Signal == model.SignalNone {
			continue
		}
		metrics.SignalsTotal.WithLabelValues(t.Symbol, string(t.Decision.Signal)).Inc()
		log.Info().Str("symbol", t.Symbol).Str("signal", string(t.Decision.Signal)).
			Float64("price", t.Analysis.Snapshot.Price).Msg("signal fired")
	}

	r.notify(ctx, log, report)

	if err := r.Recorder.RecordRun(report); err != nil {
		log.Error().Err(err).Msg("record run")
	}
	metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

	if persistErr != nil {
		metrics.RunsTotal.WithLabelValues("persist_failed").Inc()
		log.Error().Err(persistErr).Msg("run finished but signal state was not saved")
		return report, persistErr
	}
	metrics.RunsTotal.WithLabelValues("ok").Inc()
	log.Info().Int("signals", report.Signals()).Int("failed", report.Failed()).Msg("run finished, state saved")
	return report, nil
}

// analyze runs the analyzer for every ticker with bounded concurrency. Results keep
// the ticker order; a failing ticker never cancels the others.
func (r *Runner) analyze(ctx context.Context, tickers []string) []model.TickerReport {
	out := make([]model.TickerReport, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)
	for i, sym := range tickers {
		i, sym := i, sym
		out[i] = model.TickerReport{Symbol: sym, Decision: model.Decision{Signal: model.SignalNone}}
		g.Go(func() error {
			a, err := r.Analyzer.Analyze(gctx, sym)
			if err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Analysis = a
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Runner) notify(ctx context.Context, log zerolog.Logger, report *model.RunReport) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.Send(ctx, notifier.ReportSubject, notifier.FormatReport(report)); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Msg("report delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("ok").Inc()
	log.Info().Str("notifier", r.Notifier.Name()).Msg("report sent")
}

// Reset clears every ticker's flags. source names the trigger for the audit trail.
func (r *Runner) Reset(ctx context.Context, source string) error {
	if err := r.Store.Reset(ctx); err != nil {
		r.log.Error().Err(err).Str("source", source).Msg("reset failed")
		return err
	}
	metrics.StateResetsTotal.Inc()
	if err := r.Recorder.RecordReset(source); err != nil {
		r.log.Error().Err(err).Msg("record reset")
	}
	r.log.Info().Str("source", source).Msg("signal states reset")
	return nil
}

// States returns the current persisted flags and the ticker order.
func (r *Runner) States(ctx context.Context) ([]string, model.StateMap, error) {
	m, err := r.Store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return r.Store.Tickers(), m, nil
}
