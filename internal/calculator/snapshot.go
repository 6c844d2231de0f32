package calculator

import (
	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

// ValidateParams rejects spans and windows below 1.
func ValidateParams(p model.IndicatorParams) error {
	spans := []struct {
		name string
		v    int
	}{
		{"ema_fast", p.EMAFast},
		{"ema_slow", p.EMASlow},
		{"macd_fast", p.MACDFast},
		{"macd_slow", p.MACDSlow},
		{"macd_signal", p.MACDSignal},
		{"swing_window", p.SwingWindow},
	}
	for _, s := range spans {
		if s.v < 1 {
			return errors.Wrapf(model.ErrInvalidParameter, "%s=%d must be >= 1", s.name, s.v)
		}
	}
	return nil
}

// Snapshot computes the indicator values at the latest bar of the intraday series.
func Snapshot(bars []model.OHLCV, p model.IndicatorParams) (model.IndicatorSnapshot, error) {
	if len(bars) == 0 {
		return model.IndicatorSnapshot{}, errors.Wrap(model.ErrDataUnavailable, "no intraday bars")
	}
	closes := Closes(bars)

	emaFast, err := EMA(closes, p.EMAFast)
	if err != nil {
		return model.IndicatorSnapshot{}, err
	}
	emaSlow, err := EMA(closes, p.EMASlow)
	if err != nil {
		return model.IndicatorSnapshot{}, err
	}
	macd, signal, err := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	if err != nil {
		return model.IndicatorSnapshot{}, err
	}

	return model.IndicatorSnapshot{
		Price:      last(closes),
		EMAFast:    last(emaFast),
		EMASlow:    last(emaSlow),
		MACD:       last(macd),
		MACDSignal: last(signal),
	}, nil
}
