package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"SignalSentinel/internal/model"
)

// AlpacaFetcher implements Fetcher using the Alpaca market data API.
type AlpacaFetcher struct {
	client *marketdata.Client
	feed   marketdata.Feed
	now    func() time.Time
}

// NewAlpacaFetcher creates a fetcher on the IEX feed.
func NewAlpacaFetcher(apiKey, apiSecret string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		feed: marketdata.IEX,
		now:  time.Now,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func alpacaTimeFrame(interval string) (marketdata.TimeFrame, error) {
	d, err := ParseInterval(interval)
	if err != nil {
		return marketdata.TimeFrame{}, err
	}
	switch {
	case d%(7*24*time.Hour) == 0:
		return marketdata.NewTimeFrame(int(d/(7*24*time.Hour)), marketdata.Week), nil
	case d%(24*time.Hour) == 0:
		return marketdata.NewTimeFrame(int(d/(24*time.Hour)), marketdata.Day), nil
	case d%time.Hour == 0:
		return marketdata.NewTimeFrame(int(d/time.Hour), marketdata.Hour), nil
	default:
		return marketdata.NewTimeFrame(int(d/time.Minute), marketdata.Min), nil
	}
}

func (f *AlpacaFetcher) FetchSeries(ctx context.Context, symbol, period, interval string) (*model.PriceSeries, error) {
	lookback, err := ParsePeriod(period)
	if err != nil {
		return nil, unavailable(symbol, err)
	}
	tf, err := alpacaTimeFrame(interval)
	if err != nil {
		return nil, unavailable(symbol, err)
	}
	end := f.now()
	req := marketdata.GetBarsRequest{
		TimeFrame: tf,
		Start:     end.Add(-lookback),
		End:       end,
		Feed:      f.feed,
	}

	type result struct {
		bars []marketdata.Bar
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		bars, err := f.client.GetBars(symbol, req)
		ch <- result{bars, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, unavailable(symbol, ctx.Err())
	case res = <-ch:
	}
	if res.err != nil {
		return nil, unavailable(symbol, fmt.Errorf("alpaca get bars: %w", res.err))
	}
	if len(res.bars) == 0 {
		return nil, unavailable(symbol, fmt.Errorf("alpaca: no bars returned"))
	}

	bars := make([]model.OHLCV, len(res.bars))
	for i, b := range res.bars {
		bars[i] = model.OHLCV{
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Period:    period,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}
