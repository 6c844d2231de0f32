package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"SignalSentinel/internal/model"
)

func TestAlpacaTimeFrame(t *testing.T) {
	tests := []struct {
		interval string
		want     marketdata.TimeFrame
	}{
		{"1h", marketdata.NewTimeFrame(1, marketdata.Hour)},
		{"4h", marketdata.NewTimeFrame(4, marketdata.Hour)},
		{"30m", marketdata.NewTimeFrame(30, marketdata.Min)},
		{"1d", marketdata.NewTimeFrame(1, marketdata.Day)},
		{"1wk", marketdata.NewTimeFrame(1, marketdata.Week)},
	}
	for _, tt := range tests {
		got, err := alpacaTimeFrame(tt.interval)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.interval, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.interval, tt.want, got)
		}
	}

	if _, err := alpacaTimeFrame("1fortnight"); err == nil {
		t.Error("expected error for unknown interval unit")
	}
}

const alpacaBars = `[
{"t":"2024-03-01T15:00:00Z","o":10,"h":10.5,"l":9.5,"c":10.2,"v":1000,"n":10,"vw":10.1},
{"t":"2024-03-01T16:00:00Z","o":10.2,"h":11,"l":10,"c":10.8,"v":1200,"n":12,"vw":10.6}]`

func newAlpaca(t *testing.T, handler http.HandlerFunc) *AlpacaFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:     "key",
			APISecret:  "secret",
			BaseURL:    srv.URL,
			RetryLimit: 0,
		}),
		feed: marketdata.IEX,
		now:  func() time.Time { return now },
	}
}

func TestAlpaca_FetchSeries(t *testing.T) {
	var timeframe string
	f := newAlpaca(t, func(w http.ResponseWriter, r *http.Request) {
		timeframe = r.URL.Query().Get("timeframe")
		switch r.URL.Path {
		case "/v2/stocks/bars":
			w.Write([]byte(`{"bars":{"AMD":` + alpacaBars + `},"next_page_token":null}`))
		case "/v2/stocks/AMD/bars":
			w.Write([]byte(`{"symbol":"AMD","bars":` + alpacaBars + `,"next_page_token":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	s, err := f.FetchSeries(context.Background(), "AMD", "7d", "1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timeframe != "1Hour" {
		t.Errorf("expected 1Hour timeframe, got %q", timeframe)
	}
	if len(s.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(s.Bars))
	}
	last := s.Bars[1]
	if last.Close != 10.8 || last.Volume != 1200 || !last.Time.Equal(time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected last bar %+v", last)
	}
	if s.Symbol != "AMD" || s.Interval != "1h" || s.Period != "7d" {
		t.Errorf("unexpected series metadata %+v", s)
	}
}

func TestAlpaca_Errors(t *testing.T) {
	f := newAlpaca(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/stocks/bars":
			w.Write([]byte(`{"bars":{},"next_page_token":null}`))
		default:
			w.Write([]byte(`{"symbol":"AMD","bars":[],"next_page_token":null}`))
		}
	})
	if _, err := f.FetchSeries(context.Background(), "AMD", "7d", "1h"); !errors.Is(err, model.ErrDataUnavailable) {
		t.Errorf("no bars: expected ErrDataUnavailable, got %v", err)
	}
	if _, err := f.FetchSeries(context.Background(), "AMD", "forever", "1h"); !errors.Is(err, model.ErrDataUnavailable) {
		t.Errorf("bad period: expected ErrDataUnavailable, got %v", err)
	}
}
