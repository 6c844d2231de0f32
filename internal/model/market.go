package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds one fetched bar series for a symbol. Bars are ascending by time
// and the series is not modified after the fetcher returns it.
type PriceSeries struct {
	Symbol    string
	Period    string
	Interval  string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Last returns the most recent bar and false when the series is empty.
func (p *PriceSeries) Last() (OHLCV, bool) {
	if p == nil || len(p.Bars) == 0 {
		return OHLCV{}, false
	}
	return p.Bars[len(p.Bars)-1], true
}
