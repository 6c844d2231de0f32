package notifier

import (
	"fmt"
	"strconv"
	"strings"

	"SignalSentinel/internal/model"
)

// ReportSubject is the subject line of the run report.
const ReportSubject = "Trading Analysis Report"

var separator = strings.Repeat("-", 50)

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func formatLevel(v *float64) string {
	if v == nil {
		return "None"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatTicker formats one ticker's section of the report.
func FormatTicker(tr model.TickerReport) string {
	var b strings.Builder
	if tr.Err != nil || tr.Analysis == nil {
		fmt.Fprintf(&b, "Error processing %s: %v\n%s\n", tr.Symbol, tr.Err, separator)
		return b.String()
	}
	a := tr.Analysis
	s := a.Snapshot
	sig := tr.Decision.Signal

	fmt.Fprintf(&b, "Ticker: %s\n", tr.Symbol)
	fmt.Fprintf(&b, "Current Price: %.2f\n", s.Price)
	fmt.Fprintf(&b, "Nearest Support: %s, Nearest Resistance: %s\n", formatLevel(a.Support), formatLevel(a.Resistance))
	fmt.Fprintf(&b, "50 EMA: %.2f\n", s.EMASlow)
	fmt.Fprintf(&b, "20 EMA: %.2f\n", s.EMAFast)
	fmt.Fprintf(&b, "MACD: %.2f, Signal: %.2f\n", s.MACD, s.MACDSignal)
	fmt.Fprintf(&b, "Call Buy Signal: %s, Call Sell Signal: %s\n",
		pyBool(sig == model.SignalCallBuy), pyBool(sig == model.SignalCallSell))
	fmt.Fprintf(&b, "Put Buy Signal: %s, Put Sell Signal: %s\n",
		pyBool(sig == model.SignalPutBuy), pyBool(sig == model.SignalPutSell))
	b.WriteString(separator + "\n")
	return b.String()
}

// FormatReport formats the whole run report body.
func FormatReport(r *model.RunReport) string {
	var b strings.Builder
	for _, tr := range r.Tickers {
		b.WriteString(FormatTicker(tr))
	}
	if !r.Persisted {
		fmt.Fprintf(&b, "WARNING: signal state was NOT saved (%v); next run will reuse the previous state.\n", r.PersistErr)
	}
	return b.String()
}

// FormatStates renders the current flags, one ticker per line, in the given order.
func FormatStates(tickers []string, m model.StateMap) string {
	var b strings.Builder
	b.WriteString("Signal states:\n")
	for _, t := range tickers {
		st := m[t]
		fmt.Fprintf(&b, "%-6s call=%s put=%s\n", t, pyBool(st.Call), pyBool(st.Put))
	}
	return b.String()
}
