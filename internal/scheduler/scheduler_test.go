package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/model"
)

type fakeRunner struct {
	mu      sync.Mutex
	runs    int
	resets  []string
	runErr  error
	report  *model.RunReport
	states  model.StateMap
	running chan struct{}
}

func (f *fakeRunner) RunOnce(context.Context) (*model.RunReport, error) {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	if f.running != nil {
		<-f.running
	}
	return f.report, f.runErr
}

func (f *fakeRunner) Reset(_ context.Context, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, source)
	return nil
}

func (f *fakeRunner) States(context.Context) ([]string, model.StateMap, error) {
	return []string{"AMD", "NVDA"}, f.states, nil
}

func newTestScheduler(r Runner) *Scheduler {
	return NewScheduler(context.Background(), r, time.UTC, zerolog.Nop())
}

func TestHandleCommand_Reset(t *testing.T) {
	r := &fakeRunner{}
	s := newTestScheduler(r)
	if got := s.HandleCommand(context.Background(), " /Reset@SentinelBot "); got != "All signal states reset." {
		t.Errorf("unexpected reply %q", got)
	}
	if len(r.resets) != 1 || r.resets[0] != "command" {
		t.Errorf("expected one reset from command, got %v", r.resets)
	}
}

func TestHandleCommand_Run(t *testing.T) {
	report := &model.RunReport{Tickers: []model.TickerReport{
		{Symbol: "AMD", Decision: model.Decision{Signal: model.SignalCallBuy}},
		{Symbol: "BAD", Err: errors.New("boom")},
	}}
	cases := []struct {
		name   string
		report *model.RunReport
		err    error
		want   string
	}{
		{"ok", report, nil, "Run finished: 1 signal(s), 1 ticker(s) failed."},
		{"busy", nil, model.ErrRunInProgress, "A run is already in progress."},
		{"not saved", report, model.ErrPersistence, "state was not saved"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestScheduler(&fakeRunner{report: tc.report, runErr: tc.err})
			if got := s.HandleCommand(context.Background(), "/run"); !strings.Contains(got, tc.want) {
				t.Errorf("expected %q in reply, got %q", tc.want, got)
			}
		})
	}
}

func TestHandleCommand_StateAndHelp(t *testing.T) {
	s := newTestScheduler(&fakeRunner{states: model.StateMap{"AMD": {Call: true}, "NVDA": {}}})
	if got := s.HandleCommand(context.Background(), "/state"); !strings.Contains(got, "AMD    call=True put=False") {
		t.Errorf("unexpected state reply %q", got)
	}
	if got := s.HandleCommand(context.Background(), "hello"); !strings.HasPrefix(got, "Available commands:") {
		t.Errorf("expected help, got %q", got)
	}
}

func TestRegisterSlots(t *testing.T) {
	s := newTestScheduler(&fakeRunner{})
	if err := s.RegisterSlots([]string{"0 31 6 * * 1", "0 31 10 * * 5"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
	if err := s.RegisterSlots([]string{"not a spec"}); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestStopWaitsForRunningJob(t *testing.T) {
	r := &fakeRunner{running: make(chan struct{})}
	s := newTestScheduler(r)
	if err := s.RegisterSlots([]string{"* * * * * *"}); err != nil {
		t.Fatal(err)
	}
	s.Start()

	deadline := time.Now().Add(3 * time.Second)
	for {
		r.mu.Lock()
		n := r.runs
		r.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job never fired")
		}
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	s.Stop(ctx)
	if time.Since(start) < 40*time.Millisecond {
		t.Error("Stop returned before the running job or the timeout")
	}

	close(r.running)
	ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	s.Stop(ctx2)
	if ctx2.Err() != nil {
		t.Error("Stop should return once the job finishes")
	}
}

func TestStopWaitsForRunNow(t *testing.T) {
	r := &fakeRunner{running: make(chan struct{})}
	s := newTestScheduler(r)

	finished := make(chan struct{})
	go func() {
		s.RunNow()
		close(finished)
	}()
	waitForRuns(t, r, 1)

	stopped := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Stop(ctx)
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while RunNow was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(r.running)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the run finished")
	}
	<-finished
}

func TestRunsRejectedAfterStop(t *testing.T) {
	r := &fakeRunner{report: &model.RunReport{}}
	s := newTestScheduler(r)
	s.Stop(context.Background())

	s.RunNow()
	if got := s.HandleCommand(context.Background(), "/run"); got != "Shutting down, run not started." {
		t.Errorf("unexpected reply %q", got)
	}
	if r.runs != 0 {
		t.Errorf("expected no runs after Stop, got %d", r.runs)
	}
}

func waitForRuns(t *testing.T, r *fakeRunner, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		r.mu.Lock()
		got := r.runs
		r.mu.Unlock()
		if got >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d run(s), got %d", n, got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
