package model

// IndicatorSnapshot holds the derived values at the latest intraday bar.
type IndicatorSnapshot struct {
	Price      float64
	EMAFast    float64 // 20 by default, used for entries
	EMASlow    float64 // 50 by default, used for exits
	MACD       float64
	MACDSignal float64
}

// IndicatorParams configures the indicator engine.
type IndicatorParams struct {
	EMAFast     int `yaml:"ema_fast"`
	EMASlow     int `yaml:"ema_slow"`
	MACDFast    int `yaml:"macd_fast"`
	MACDSlow    int `yaml:"macd_slow"`
	MACDSignal  int `yaml:"macd_signal"`
	SwingWindow int `yaml:"swing_window"`
}

// DefaultIndicatorParams returns the standard 20/50 EMA, 12/26/9 MACD, 5-bar swing setup.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		EMAFast:     20,
		EMASlow:     50,
		MACDFast:    12,
		MACDSlow:    26,
		MACDSignal:  9,
		SwingWindow: 5,
	}
}

// TickerAnalysis is everything computed for one ticker in one run.
type TickerAnalysis struct {
	Symbol     string
	Snapshot   IndicatorSnapshot
	Levels     []float64 // ascending, deduplicated
	Support    *float64
	Resistance *float64
}
