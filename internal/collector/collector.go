package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Series are keyed by interval; Errs fails individual symbols.
type MockFetcher struct {
	mu     sync.Mutex
	Series map[string][]model.OHLCV
	Errs   map[string]error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, symbol, period, interval string) (*model.PriceSeries, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if err, ok := m.Errs[symbol]; ok {
		return nil, unavailable(symbol, err)
	}
	bars, ok := m.Series[interval]
	if !ok || len(bars) == 0 {
		return nil, unavailable(symbol, fmt.Errorf("mock: no %s series", interval))
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Period:    period,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// Series names the lookback/interval pair of one fetch.
type Series struct {
	Period   string
	Interval string
}

// Collector fetches a ticker's daily and intraday series and derives its indicators.
type Collector struct {
	Fetcher  Fetcher
	Params   model.IndicatorParams
	Daily    Series
	Intraday Series
	Timeout  time.Duration
	log      zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, params model.IndicatorParams, daily, intraday Series, timeout time.Duration, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Params:   params,
		Daily:    daily,
		Intraday: intraday,
		Timeout:  timeout,
		log:      log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

func (c *Collector) fetch(ctx context.Context, symbol string, s Series) (*model.PriceSeries, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return c.Fetcher.FetchSeries(ctx, symbol, s.Period, s.Interval)
}

// Analyze fetches both series for symbol and computes levels and the indicator snapshot.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*model.TickerAnalysis, error) {
	daily, err := c.fetch(ctx, symbol, c.Daily)
	if err != nil {
		return nil, fmt.Errorf("fetch daily series: %w", err)
	}
	intraday, err := c.fetch(ctx, symbol, c.Intraday)
	if err != nil {
		return nil, fmt.Errorf("fetch intraday series: %w", err)
	}

	levels, err := calculator.SwingLevels(daily.Bars, c.Params.SwingWindow)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		c.log.Warn().Str("symbol", symbol).Int("bars", len(daily.Bars)).Msg("no swing levels found")
	}

	snap, err := calculator.Snapshot(intraday.Bars, c.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	support, resistance := calculator.NearestLevels(levels, snap.Price)

	return &model.TickerAnalysis{
		Symbol:     symbol,
		Snapshot:   snap,
		Levels:     levels,
		Support:    support,
		Resistance: resistance,
	}, nil
}
