package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/runner"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/internal/state"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogConsole)
	log.Info().Msg("SignalSentinel starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	specs, _ := cfg.CronSpecs()
	loc, _ := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Data source
	fetcher := newFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")
	col := collector.NewCollector(fetcher, cfg.Indicators,
		collector.Series{Period: cfg.DataSource.DailyPeriod, Interval: cfg.DataSource.DailyInterval},
		collector.Series{Period: cfg.DataSource.IntradayPeriod, Interval: cfg.DataSource.IntradayInterval},
		cfg.DataSource.Timeout, log)

	// Signal state
	var backend state.Backend
	switch cfg.State.Backend {
	case "redis":
		rb := state.NewRedisBackend(cfg.State.RedisAddr, cfg.State.RedisPass, cfg.State.RedisDB, cfg.State.RedisKey)
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := rb.Ping(pingCtx)
		pingCancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.State.RedisAddr).Msg("connect redis")
		}
		defer rb.Close()
		backend = rb
	default:
		backend = state.NewFileBackend(cfg.State.File)
	}
	store := state.NewStore(backend, cfg.Tickers, log)
	if _, err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("load signal state")
	}

	// Notifiers
	var notifiers notifier.Multi
	if cfg.EmailEnabled() {
		notifiers = append(notifiers, notifier.NewEmailNotifier(cfg.Email.Host, cfg.Email.Port,
			cfg.Email.Username, cfg.Email.Password, cfg.Email.From, cfg.Email.To))
	}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		notifiers = append(notifiers, tn)
	}
	if len(notifiers) == 0 {
		log.Warn().Msg("no email or telegram configured, reports go to the log")
		notifiers = append(notifiers, notifier.NewLogNotifier(log))
	}

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Metrics
	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr)
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listening")
		defer func() {
			shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	run := runner.New(col, store, notifiers, rec, cfg.DataSource.Concurrency, log)

	sched := scheduler.NewScheduler(ctx, run, loc, log)
	if err := sched.RegisterSlots(specs); err != nil {
		log.Fatal().Err(err).Msg("register slots")
	}
	sched.Start()

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	if tn != nil {
		go tn.StartPolling(pollCtx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, running now")
		go sched.RunNow()
	}

	log.Info().Strs("tickers", cfg.Tickers).Msg("SignalSentinel is running. Send SIGUSR1 to reset, Ctrl+C to stop.")
	waitForSignals(ctx, run, log)

	log.Info().Msg("shutdown signal received, stopping...")
	// runs in flight finish their state write before the root context is cancelled
	stopPolling()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	sched.Stop(stopCtx)
	cancel()
	log.Info().Msg("SignalSentinel stopped")
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	ds := cfg.DataSource
	switch ds.Provider {
	case "bars_api":
		return collector.NewBarsAPIFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.Timeout)
	case "alpaca":
		return collector.NewAlpacaFetcher(ds.APIKey, ds.APISecret)
	default:
		return collector.NewYahooFetcher(cfg.Proxy, ds.Timeout)
	}
}

// waitForSignals blocks until SIGINT/SIGTERM. SIGUSR1 resets all signal states.
func waitForSignals(ctx context.Context, run *runner.Runner, log zerolog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	for sig := range sigCh {
		if sig != syscall.SIGUSR1 {
			return
		}
		if err := run.Reset(ctx, "signal"); err != nil {
			log.Error().Err(err).Msg("reset on SIGUSR1")
		}
	}
}
