package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"TrendScope/internal/config"
	"TrendScope/internal/model"
)

// CSVVisualizer writes one row per bar with every indicator as a column and
// the signal raised on that bar, if any.
type CSVVisualizer struct {
	Precision int
}

// NewCSV builds the table visualizer. precision is the number of decimals
// written; -1 keeps the shortest exact form.
func NewCSV(p *config.Params) (Visualizer, error) {
	precision, err := p.Int("precision", -1)
	if err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, err
	}
	return &CSVVisualizer{Precision: precision}, nil
}

func (v *CSVVisualizer) Name() string { return KeyCSV }

func (v *CSVVisualizer) Render(in Input, outputPath string) error {
	if in.Bars == nil {
		return fmt.Errorf("no bars to render")
	}
	if err := ensureDir(outputPath); err != nil {
		return err
	}

	series := in.ordered()
	header := []string{"Date", "Open", "High", "Low", "Close", "Volume"}
	for _, s := range series {
		header = append(header, s.Name)
	}
	header = append(header, "Signal")

	signals := make(map[int64]model.SignalType, len(in.Signals))
	for _, s := range in.Signals {
		signals[s.Time.UnixNano()] = s.Type
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	b := in.Bars
	for i, t := range b.Times {
		row := []string{
			t.Format(model.DateLayout),
			v.cell(b.Open, i), v.cell(b.High, i), v.cell(b.Low, i), v.cell(b.Close, i), v.cell(b.Volume, i),
		}
		for _, s := range series {
			row = append(row, v.cell(s.Values, i))
		}
		row = append(row, string(signals[t.UnixNano()]))
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// cell formats values[i]; missing and undefined values are written empty.
func (v *CSVVisualizer) cell(values []float64, i int) string {
	if i >= len(values) || !finite(values[i]) {
		return ""
	}
	return strconv.FormatFloat(values[i], 'f', v.Precision, 64)
}
