package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
)

// Runner is the subset of runner.Runner the scheduler drives.
type Runner interface {
	RunOnce(ctx context.Context) (*model.RunReport, error)
	Reset(ctx context.Context, source string) error
	States(ctx context.Context) ([]string, model.StateMap, error)
}

// Scheduler fires evaluation runs on cron slots and serves operator commands.
type Scheduler struct {
	Cron   *cron.Cron
	Runner Runner
	Ctx    context.Context
	log    zerolog.Logger

	mu      sync.Mutex
	stopped bool
	runs    sync.WaitGroup
}

// NewScheduler creates a Scheduler. A nil loc means the local zone.
func NewScheduler(ctx context.Context, r Runner, loc *time.Location, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Runner: r,
		Ctx:    ctx,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterSlots adds one run job per 6-field cron spec.
func (s *Scheduler) RegisterSlots(specs []string) error {
	for _, spec := range specs {
		if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
			return fmt.Errorf("register slot %q: %w", spec, err)
		}
	}
	s.log.Info().Int("slots", len(specs)).Msg("slots registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop rejects new runs, then waits for every run in flight (cron slots, RunNow and
// /run) or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	cronDone := s.Cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info().Msg("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out with a run in flight")
	}
}

// track registers a run. It returns false once Stop has been called.
func (s *Scheduler) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.runs.Add(1)
	return true
}

// RunNow executes a run immediately (RUN_ON_START and manual triggers).
func (s *Scheduler) RunNow() {
	s.runTask()
}

func (s *Scheduler) runTask() {
	if !s.track() {
		s.log.Warn().Msg("scheduler stopped, run skipped")
		return
	}
	defer s.runs.Done()
	if _, err := s.Runner.RunOnce(s.Ctx); err != nil {
		if errors.Is(err, model.ErrRunInProgress) {
			s.log.Warn().Msg("skipping slot, previous run still in progress")
			return
		}
		s.log.Error().Err(err).Msg("scheduled run failed")
	}
}

const help = "Available commands:\n/run - evaluate all tickers now\n/reset - clear all call/put flags\n/state - show current flags"

// HandleCommand processes an operator command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	cmd := strings.ToLower(strings.TrimSpace(command))
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		// "/reset@MyBot" in group chats
		cmd = cmd[:i]
	}
	switch cmd {
	case "/reset":
		if err := s.Runner.Reset(ctx, "command"); err != nil {
			return fmt.Sprintf("Reset failed: %v", err)
		}
		return "All signal states reset."
	case "/run":
		if !s.track() {
			return "Shutting down, run not started."
		}
		// the run belongs to the scheduler's lifetime, not to the command's transport
		report, err := s.Runner.RunOnce(s.Ctx)
		s.runs.Done()
		switch {
		case errors.Is(err, model.ErrRunInProgress):
			return "A run is already in progress."
		case report == nil:
			return fmt.Sprintf("Run failed: %v", err)
		case err != nil:
			return fmt.Sprintf("Run finished with %d signal(s) but state was not saved: %v", report.Signals(), err)
		}
		return fmt.Sprintf("Run finished: %d signal(s), %d ticker(s) failed.", report.Signals(), report.Failed())
	case "/state":
		tickers, m, err := s.Runner.States(ctx)
		if err != nil {
			return fmt.Sprintf("Could not load state: %v", err)
		}
		return notifier.FormatStates(tickers, m)
	default:
		return help
	}
}
