package collector

import (
	"context"

	"SignalSentinel/internal/model"
)

// Fetcher retrieves OHLC series. Period and interval use Yahoo-style notation
// ("7d", "1y"; "1h", "1d"). Any failure or empty result wraps model.ErrDataUnavailable.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol, period, interval string) (*model.PriceSeries, error)
	Name() string
}
