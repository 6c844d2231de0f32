package calculator

import (
	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

// EMA computes the exponential moving average with smoothing factor 2/(span+1),
// seeded with the first value. The result has the same length as values.
func EMA(values []float64, span int) ([]float64, error) {
	if span < 1 {
		return nil, errors.Wrapf(model.ErrInvalidParameter, "ema span %d must be >= 1", span)
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// MACD returns the MACD line (fast EMA minus slow EMA) and its signal line,
// both aligned with values.
func MACD(values []float64, fast, slow, signal int) (macd, signalLine []float64, err error) {
	fastEMA, err := EMA(values, fast)
	if err != nil {
		return nil, nil, errors.Wrap(err, "macd fast")
	}
	slowEMA, err := EMA(values, slow)
	if err != nil {
		return nil, nil, errors.Wrap(err, "macd slow")
	}
	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine, err = EMA(macd, signal)
	if err != nil {
		return nil, nil, errors.Wrap(err, "macd signal")
	}
	return macd, signalLine, nil
}

// Closes extracts the close column.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
