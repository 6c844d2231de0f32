package calculator

import (
	"errors"
	"reflect"
	"testing"

	"SignalSentinel/internal/model"
)

func barsHL(highs, lows []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(highs))
	for i := range highs {
		bars[i] = model.OHLCV{High: highs[i], Low: lows[i], Close: (highs[i] + lows[i]) / 2}
	}
	return bars
}

func TestSwingLevels_MonotonicSeriesHasNoLevels(t *testing.T) {
	n := 30
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 10 + float64(i)
		lows[i] = 9 + float64(i)
	}
	levels, err := SwingLevels(barsHL(highs, lows), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 0 {
		t.Errorf("expected no levels for a monotonic series, got %v", levels)
	}
}

func TestSwingLevels_PeakAndTrough(t *testing.T) {
	// window 2: peak at index 3 (high 15), trough at index 7 (low 1)
	highs := []float64{10, 11, 12, 15, 12, 11, 10, 9, 10, 11, 12}
	lows := []float64{8, 9, 10, 13, 10, 9, 8, 1, 8, 9, 10}
	levels, err := SwingLevels(barsHL(highs, lows), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 15}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("levels=%v, want %v", levels, want)
	}
}

func TestSwingLevels_EdgeBarsIgnored(t *testing.T) {
	// the global extremes sit inside the first/last window and must not be reported
	highs := []float64{50, 11, 12, 11, 10, 11, 12, 11, 10, 11, 60}
	lows := []float64{0.5, 9, 9, 9, 9, 9, 9, 9, 9, 9, 0.1}
	levels, err := SwingLevels(barsHL(highs, lows), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, l := range levels {
		if l == 50 || l == 60 || l == 0.5 || l == 0.1 {
			t.Errorf("edge value %.2f reported as a level: %v", l, levels)
		}
	}
}

func TestSwingLevels_TiesDeduplicated(t *testing.T) {
	// flat highs: every interior bar ties the window max; flat lows likewise
	highs := []float64{10, 10, 10, 10, 10, 10, 10}
	lows := []float64{5, 5, 5, 5, 5, 5, 5}
	levels, err := SwingLevels(barsHL(highs, lows), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{5, 10}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("levels=%v, want %v", levels, want)
	}
}

func TestSwingLevels_HighAndLowSharingValue(t *testing.T) {
	// a swing high of 12 and a later swing low of 12 collapse into one level
	highs := []float64{10, 11, 12, 11, 10, 14, 15, 16, 15, 14, 13, 14, 15}
	lows := []float64{9, 10, 11, 10, 9, 13, 14, 15, 14, 13, 12, 13, 14}
	levels, err := SwingLevels(barsHL(highs, lows), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, l := range levels {
		if l == 12 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 12 exactly once, got %v", levels)
	}
}

func TestSwingLevels_ShortSeries(t *testing.T) {
	bars := barsHL([]float64{1, 2, 3, 2}, []float64{0, 1, 2, 1})
	levels, err := SwingLevels(bars, 5)
	if err != nil {
		t.Fatalf("short series must not error, got %v", err)
	}
	if len(levels) != 0 {
		t.Errorf("expected empty levels, got %v", levels)
	}
}

func TestSwingLevels_InvalidWindow(t *testing.T) {
	if _, err := SwingLevels(nil, 0); !errors.Is(err, model.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
