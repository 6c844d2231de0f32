package calculator

import (
	"sort"

	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

// SwingLevels scans bars for swing highs and lows. A bar i with window <= i < n-window
// is a swing high when its High equals the max High over [i-window, i+window], and a
// swing low when its Low equals the min Low over the same bars. Highs and lows are
// merged into one ascending, deduplicated set. Too few bars yields an empty set.
func SwingLevels(bars []model.OHLCV, window int) ([]float64, error) {
	if window < 1 {
		return nil, errors.Wrapf(model.ErrInvalidParameter, "swing window %d must be >= 1", window)
	}
	n := len(bars)
	if n < 2*window+1 {
		return []float64{}, nil
	}

	seen := make(map[float64]struct{})
	for i := window; i < n-window; i++ {
		maxHigh := bars[i-window].High
		minLow := bars[i-window].Low
		for j := i - window + 1; j <= i+window; j++ {
			if bars[j].High > maxHigh {
				maxHigh = bars[j].High
			}
			if bars[j].Low < minLow {
				minLow = bars[j].Low
			}
		}
		if bars[i].High == maxHigh {
			seen[bars[i].High] = struct{}{}
		}
		if bars[i].Low == minLow {
			seen[bars[i].Low] = struct{}{}
		}
	}

	levels := make([]float64, 0, len(seen))
	for v := range seen {
		levels = append(levels, v)
	}
	sort.Float64s(levels)
	return levels, nil
}
