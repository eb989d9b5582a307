package notifier

import (
	"fmt"
	"html"
	"strings"

	"TrendScope/internal/errs"
	"TrendScope/internal/model"
	"TrendScope/internal/render"
)

// maxReportSignals bounds the signal list in a chat message.
const maxReportSignals = 5

// FormatRunSummary formats a finished run into a Telegram message.
func FormatRunSummary(res *model.AnalysisResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>TrendScope</b> | %s\n\n", res.CreatedAt.Format("2006-01-02 15:04")))

	in := render.Input{Bars: res.Bars, Indicators: res.Indicators, Order: res.Order, Signals: res.Signals}
	b.WriteString("<pre>")
	b.WriteString(html.EscapeString(render.FormatReport(in, maxReportSignals)))
	b.WriteString("</pre>")

	if s, ok := latestSignal(res); ok {
		b.WriteString(fmt.Sprintf("\n%s <b>Latest: %s</b> on %s at %.2f\n",
			signalIcon(s.Type), s.Type, s.Time.Format(model.DateLayout), s.Price))
	}
	if p, ok := res.Metadata[model.MetaOutputPath].(string); ok && p != "" {
		b.WriteString(fmt.Sprintf("\nOutput: %s\n", html.EscapeString(p)))
	}
	return b.String()
}

// FormatFailure formats a failed run. Typed errors show their kind.
func FormatFailure(ticker string, err error) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("❌ <b>TrendScope run failed</b> | %s\n\n", html.EscapeString(ticker)))
	if e, ok := errs.As(err); ok {
		b.WriteString(fmt.Sprintf("Kind: %s\n", e.Kind))
	}
	b.WriteString(html.EscapeString(err.Error()))
	return b.String()
}

func latestSignal(res *model.AnalysisResult) (model.Signal, bool) {
	if len(res.Signals) == 0 {
		return model.Signal{}, false
	}
	return res.Signals[len(res.Signals)-1], true
}

func signalIcon(t model.SignalType) string {
	switch t {
	case model.SignalBuy:
		return "🟢"
	case model.SignalSell:
		return "🔴"
	default:
		return "⚪"
	}
}
