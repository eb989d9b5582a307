package render

import (
	"fmt"
	"math"
	"os"
	"strings"

	"TrendScope/internal/config"
	"TrendScope/internal/model"
)

// ReportVisualizer writes a plain-text summary: the latest bar, the latest
// value of each indicator and the most recent signals.
type ReportVisualizer struct {
	// MaxSignals caps the signal list; 0 lists all of them.
	MaxSignals int
}

// NewReport builds the text report visualizer.
func NewReport(p *config.Params) (Visualizer, error) {
	max, err := p.Int("max_signals", 20)
	if err != nil {
		return nil, err
	}
	if max < 0 {
		return nil, fmt.Errorf("max_signals must be >= 0, got %d", max)
	}
	if err := p.Done(); err != nil {
		return nil, err
	}
	return &ReportVisualizer{MaxSignals: max}, nil
}

func (v *ReportVisualizer) Name() string { return KeyReport }

func (v *ReportVisualizer) Render(in Input, outputPath string) error {
	if in.Bars.Len() == 0 {
		return fmt.Errorf("no bars to render")
	}
	if err := ensureDir(outputPath); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(FormatReport(in, v.MaxSignals)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

// FormatReport renders the text report. It is also used for notifications.
func FormatReport(in Input, maxSignals int) string {
	var b strings.Builder
	bars := in.Bars
	last := bars.Len() - 1

	b.WriteString(fmt.Sprintf("%s (%s) | %s → %s, %d bars\n\n",
		bars.Symbol, bars.Interval,
		bars.Times[0].Format(model.DateLayout), bars.Times[last].Format(model.DateLayout), bars.Len()))

	b.WriteString(fmt.Sprintf("Close: %s\n", formatValue(bars.Close[last])))
	if last > 0 && finite(bars.Close[last-1]) && bars.Close[last-1] != 0 && finite(bars.Close[last]) {
		chg := (bars.Close[last] - bars.Close[last-1]) / bars.Close[last-1] * 100
		b.WriteString(fmt.Sprintf("Change: %+.2f%%\n", chg))
	}

	if series := in.ordered(); len(series) > 0 {
		b.WriteString("\nIndicators:\n")
		for _, s := range series {
			val := math.NaN()
			if n := len(s.Values); n > 0 {
				val = s.Values[n-1]
			}
			b.WriteString(fmt.Sprintf("  %-12s %s\n", s.Name, formatValue(val)))
		}
	}

	buys, sells := 0, 0
	for _, s := range in.Signals {
		switch s.Type {
		case model.SignalBuy:
			buys++
		case model.SignalSell:
			sells++
		}
	}
	b.WriteString(fmt.Sprintf("\nSignals: %d (BUY %d, SELL %d)\n", len(in.Signals), buys, sells))

	signals := in.Signals
	if maxSignals > 0 && len(signals) > maxSignals {
		signals = signals[len(signals)-maxSignals:]
	}
	for _, s := range signals {
		b.WriteString(fmt.Sprintf("  %s %-4s %s", s.Time.Format(model.DateLayout), s.Type, formatValue(s.Price)))
		if s.Description != "" {
			b.WriteString("  " + s.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatValue(v float64) string {
	if !finite(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
