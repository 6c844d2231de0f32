package strategy

import "SignalSentinel/internal/model"

// Evaluate runs the per-ticker state machine. Branches are checked in order and the
// first match wins, so at most one signal fires per ticker per run:
//
//  1. flat, price > fast EMA, MACD > signal        -> call buy
//  2. call open, price < slow EMA                   -> call sell
//  3. put not open, price < fast EMA, MACD < signal -> put buy
//  4. put open, price > slow EMA                    -> put sell
//
// Entries use the fast EMA and exits the slow one. Branch 3 only checks its own flag.
func Evaluate(st model.TickerState, s model.IndicatorSnapshot) model.Decision {
	next := st
	switch {
	case st.Flat() && s.Price > s.EMAFast && s.MACD > s.MACDSignal:
		next.Call = true
		return model.Decision{Signal: model.SignalCallBuy, Next: next}
	case st.Call && s.Price < s.EMASlow:
		next.Call = false
		return model.Decision{Signal: model.SignalCallSell, Next: next}
	case !st.Put && s.Price < s.EMAFast && s.MACD < s.MACDSignal:
		next.Put = true
		return model.Decision{Signal: model.SignalPutBuy, Next: next}
	case st.Put && s.Price > s.EMASlow:
		next.Put = false
		return model.Decision{Signal: model.SignalPutSell, Next: next}
	}
	return model.Decision{Signal: model.SignalNone, Next: next}
}
