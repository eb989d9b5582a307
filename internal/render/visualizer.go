// Package render writes analysis results to output files.
package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"TrendScope/internal/model"
)

// Input is everything a visualizer may draw.
type Input struct {
	Bars       *model.BarSeries
	Indicators map[string]*model.IndicatorSeries
	// Order lists indicator names in configuration order.
	Order   []string
	Signals []model.Signal
}

// Visualizer renders an Input to outputPath.
type Visualizer interface {
	Name() string
	Render(in Input, outputPath string) error
}

// Registry keys of the built-in visualizers.
const (
	KeyECharts = "echarts"
	KeyCSV     = "csv"
	KeyReport  = "report"
)

// ordered returns the indicators in display order. Names in Order come
// first; anything left over follows in name order.
func (in Input) ordered() []*model.IndicatorSeries {
	seen := make(map[string]bool, len(in.Indicators))
	out := make([]*model.IndicatorSeries, 0, len(in.Indicators))
	for _, name := range in.Order {
		if s, ok := in.Indicators[name]; ok && !seen[name] {
			out = append(out, s)
			seen[name] = true
		}
	}
	var rest []string
	for name := range in.Indicators {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, in.Indicators[name])
	}
	return out
}

func ensureDir(outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is empty")
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
