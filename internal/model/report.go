package model

import "time"

// TickerReport is one ticker's section of a run report.
type TickerReport struct {
	Symbol   string
	Analysis *TickerAnalysis
	Before   TickerState
	Decision Decision
	Err      error
}

// RunReport is the accumulated outcome of one evaluation run.
type RunReport struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Tickers    []TickerReport
	Persisted  bool
	PersistErr error
}

// Signals counts fired signals, ignoring SignalNone.
func (r *RunReport) Signals() int {
	n := 0
	for _, t := range r.Tickers {
		if t.Err == nil && t.Decision.Signal != SignalNone && t.Decision.Signal != "" {
			n++
		}
	}
	return n
}

// Failed counts tickers whose analysis failed.
func (r *RunReport) Failed() int {
	n := 0
	for _, t := range r.Tickers {
		if t.Err != nil {
			n++
		}
	}
	return n
}
