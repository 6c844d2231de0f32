package notifier

import (
	"errors"
	"strings"
	"testing"

	"SignalSentinel/internal/model"
)

func level(v float64) *float64 { return &v }

func TestFormatTicker(t *testing.T) {
	tr := model.TickerReport{
		Symbol: "AMD",
		Analysis: &model.TickerAnalysis{
			Symbol:     "AMD",
			Snapshot:   model.IndicatorSnapshot{Price: 12, EMAFast: 10.19, EMASlow: 10.078, MACD: 0.1234, MACDSignal: 0.0247},
			Support:    level(11.5),
			Resistance: nil,
		},
		Decision: model.Decision{Signal: model.SignalCallBuy, Next: model.TickerState{Call: true}},
	}
	got := FormatTicker(tr)
	want := "Ticker: AMD\n" +
		"Current Price: 12.00\n" +
		"Nearest Support: 11.5, Nearest Resistance: None\n" +
		"50 EMA: 10.08\n" +
		"20 EMA: 10.19\n" +
		"MACD: 0.12, Signal: 0.02\n" +
		"Call Buy Signal: True, Call Sell Signal: False\n" +
		"Put Buy Signal: False, Put Sell Signal: False\n" +
		strings.Repeat("-", 50) + "\n"
	if got != want {
		t.Errorf("unexpected format:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatTicker_Error(t *testing.T) {
	got := FormatTicker(model.TickerReport{Symbol: "BAD", Err: errors.New("data unavailable: BAD: 404")})
	if !strings.HasPrefix(got, "Error processing BAD: data unavailable: BAD: 404\n") {
		t.Errorf("unexpected error line: %q", got)
	}
}

func TestFormatReport_PersistWarning(t *testing.T) {
	r := &model.RunReport{Persisted: false, PersistErr: errors.New("disk full")}
	if !strings.Contains(FormatReport(r), "NOT saved (disk full)") {
		t.Error("expected persistence warning")
	}
	r.Persisted = true
	if strings.Contains(FormatReport(r), "NOT saved") {
		t.Error("unexpected persistence warning")
	}
}

func TestFormatStates(t *testing.T) {
	out := FormatStates([]string{"AMD", "NVDA"}, model.StateMap{"AMD": {Call: true}})
	if !strings.Contains(out, "AMD    call=True put=False") || !strings.Contains(out, "NVDA   call=False put=False") {
		t.Errorf("unexpected states:\n%s", out)
	}
}

func TestFormatLevel(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, "None"},
		{level(11.5), "11.5"},
		{level(13), "13"},
		{level(187.255), "187.255"},
	}
	for _, tc := range cases {
		if got := formatLevel(tc.in); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}
