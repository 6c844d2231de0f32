package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	r := openTestRecorder(t)
	support := 11.5
	report := &model.RunReport{
		ID:         "run-1",
		StartedAt:  time.Unix(1700000000, 0),
		FinishedAt: time.Unix(1700000005, 0),
		Persisted:  true,
		Tickers: []model.TickerReport{
			{
				Symbol: "AMD",
				Analysis: &model.TickerAnalysis{
					Symbol:   "AMD",
					Snapshot: model.IndicatorSnapshot{Price: 12, EMAFast: 10.2, EMASlow: 10.1, MACD: 0.3, MACDSignal: 0.1},
					Support:  &support,
				},
				Decision: model.Decision{Signal: model.SignalCallBuy, Next: model.TickerState{Call: true}},
			},
			{Symbol: "BAD", Err: errors.New("data unavailable: BAD")},
		},
	}
	if err := r.RecordRun(report); err != nil {
		t.Fatalf("record run: %v", err)
	}

	var tickers, signals, failures int
	if err := r.db.QueryRow(`SELECT tickers, signals, failures FROM runs WHERE id = ?`, "run-1").
		Scan(&tickers, &signals, &failures); err != nil {
		t.Fatalf("query run: %v", err)
	}
	if tickers != 2 || signals != 1 || failures != 1 {
		t.Errorf("unexpected run row: tickers=%d signals=%d failures=%d", tickers, signals, failures)
	}

	var sig string
	var callAfter bool
	var resistance *float64
	if err := r.db.QueryRow(`SELECT signal, call_after, resistance FROM evaluations WHERE symbol = 'AMD'`).
		Scan(&sig, &callAfter, &resistance); err != nil {
		t.Fatalf("query evaluation: %v", err)
	}
	if sig != "call_buy" || !callAfter || resistance != nil {
		t.Errorf("unexpected evaluation: signal=%s call_after=%v resistance=%v", sig, callAfter, resistance)
	}

	var errText string
	if err := r.db.QueryRow(`SELECT error FROM evaluations WHERE symbol = 'BAD'`).Scan(&errText); err != nil {
		t.Fatalf("query failed evaluation: %v", err)
	}
	if errText != "data unavailable: BAD" {
		t.Errorf("unexpected error text %q", errText)
	}
}

func TestSQLiteRecorder_DuplicateRunRollsBack(t *testing.T) {
	r := openTestRecorder(t)
	report := &model.RunReport{ID: "dup", Tickers: []model.TickerReport{{Symbol: "AMD"}}}
	if err := r.RecordRun(report); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := r.RecordRun(report); err == nil {
		t.Fatal("expected primary key violation")
	}
	var n int
	r.db.QueryRow(`SELECT COUNT(*) FROM evaluations WHERE run_id = 'dup'`).Scan(&n)
	if n != 1 {
		t.Errorf("expected 1 evaluation row after rollback, got %d", n)
	}
}

func TestSQLiteRecorder_RecordReset(t *testing.T) {
	r := openTestRecorder(t)
	for _, src := range []string{"telegram", "signal"} {
		if err := r.RecordReset(src); err != nil {
			t.Fatalf("record reset: %v", err)
		}
	}
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM resets`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 resets, got %d", n)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordRun(&model.RunReport{}); err != nil {
		t.Error(err)
	}
	if err := r.RecordReset("x"); err != nil {
		t.Error(err)
	}
}
