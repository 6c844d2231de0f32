package model

// Signal is the trade signal produced for a ticker in one run.
type Signal string

const (
	SignalNone     Signal = "none"
	SignalCallBuy  Signal = "call_buy"
	SignalCallSell Signal = "call_sell"
	SignalPutBuy   Signal = "put_buy"
	SignalPutSell  Signal = "put_sell"
)

// TickerState records whether a call or put position is considered open.
type TickerState struct {
	Call bool `json:"call"`
	Put  bool `json:"put"`
}

// Flat reports whether neither side is open.
func (s TickerState) Flat() bool { return !s.Call && !s.Put }

// StateMap maps ticker symbol to its state. Its key set is the configured ticker list.
type StateMap map[string]TickerState

// NewStateMap returns a map with every ticker flat.
func NewStateMap(tickers []string) StateMap {
	m := make(StateMap, len(tickers))
	for _, t := range tickers {
		m[t] = TickerState{}
	}
	return m
}

// Clone returns an independent copy.
func (m StateMap) Clone() StateMap {
	out := make(StateMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Decision is the evaluator output for one ticker.
type Decision struct {
	Signal Signal
	Next   TickerState
}
