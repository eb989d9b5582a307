package render

import (
	"fmt"
	"os"

	"TrendScope/internal/config"
	"TrendScope/internal/model"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// EChartsVisualizer writes an interactive HTML page: a candlestick chart with
// overlay indicators and signal markers, and a second chart for oscillators.
type EChartsVisualizer struct {
	Title  string
	Width  string
	Height string
	// Zoom adds a range slider under the price chart.
	Zoom bool
}

// NewECharts builds the visualizer from title, width and height (CSS sizes)
// and zoom.
func NewECharts(p *config.Params) (Visualizer, error) {
	title, err := p.String("title", "")
	if err != nil {
		return nil, err
	}
	width, err := p.String("width", "1200px")
	if err != nil {
		return nil, err
	}
	height, err := p.String("height", "600px")
	if err != nil {
		return nil, err
	}
	zoom, err := p.Bool("zoom", true)
	if err != nil {
		return nil, err
	}
	if err := p.Done(); err != nil {
		return nil, err
	}
	return &EChartsVisualizer{Title: title, Width: width, Height: height, Zoom: zoom}, nil
}

func (v *EChartsVisualizer) Name() string { return KeyECharts }

func (v *EChartsVisualizer) Render(in Input, outputPath string) error {
	if in.Bars.Len() == 0 {
		return fmt.Errorf("no bars to render")
	}
	if err := ensureDir(outputPath); err != nil {
		return err
	}

	title := v.Title
	if title == "" {
		title = fmt.Sprintf("%s Technical Analysis", in.Bars.Symbol)
	}
	x := make([]string, in.Bars.Len())
	for i, t := range in.Bars.Times {
		x[i] = t.Format(model.DateLayout)
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(v.priceChart(in, title, x))
	if osc := v.oscillatorChart(in, x); osc != nil {
		page.AddCharts(osc)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render html: %w", err)
	}
	return f.Close()
}

func (v *EChartsVisualizer) priceChart(in Input, title string, x []string) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: v.Width, Height: v.Height}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: in.Bars.Interval}),
	)
	if v.Zoom {
		kline.SetGlobalOptions(charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}))
	}

	candles := make([]opts.KlineData, in.Bars.Len())
	for i := range candles {
		o, c, l, h := in.Bars.Open[i], in.Bars.Close[i], in.Bars.Low[i], in.Bars.High[i]
		if finite(o) && finite(c) && finite(l) && finite(h) {
			// echarts order: open, close, low, high
			candles[i] = opts.KlineData{Value: [4]float64{o, c, l, h}}
		}
	}
	kline.SetXAxis(x).AddSeries("Price", candles)

	for _, s := range in.ordered() {
		if s.Kind != model.KindOverlay {
			continue
		}
		line := charts.NewLine()
		line.SetXAxis(x).AddSeries(s.Name, lineData(s.Values))
		kline.Overlap(line)
	}

	buys, sells := signalMarkers(in)
	if len(in.Signals) > 0 {
		scatter := charts.NewScatter()
		scatter.SetXAxis(x).
			AddSeries("BUY", buys, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#26a69a"})).
			AddSeries("SELL", sells, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ef5350"}))
		kline.Overlap(scatter)
	}
	return kline
}

func (v *EChartsVisualizer) oscillatorChart(in Input, x []string) *charts.Line {
	var line *charts.Line
	for _, s := range in.ordered() {
		if s.Kind != model.KindOscillator {
			continue
		}
		if line == nil {
			line = charts.NewLine()
			line.SetGlobalOptions(
				charts.WithInitializationOpts(opts.Initialization{Width: v.Width, Height: "300px"}),
				charts.WithTitleOpts(opts.Title{Title: "Oscillators"}),
			)
			line.SetXAxis(x)
		}
		line.AddSeries(s.Name, lineData(s.Values))
	}
	return line
}

// lineData leaves undefined values empty so the line shows a gap.
func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		if finite(v) {
			data[i] = opts.LineData{Value: v}
		}
	}
	return data
}

func signalMarkers(in Input) (buys, sells []opts.ScatterData) {
	index := make(map[int64]int, in.Bars.Len())
	for i, t := range in.Bars.Times {
		index[t.UnixNano()] = i
	}
	buys = make([]opts.ScatterData, in.Bars.Len())
	sells = make([]opts.ScatterData, in.Bars.Len())
	for _, s := range in.Signals {
		i, ok := index[s.Time.UnixNano()]
		if !ok {
			continue
		}
		switch s.Type {
		case model.SignalBuy:
			buys[i] = opts.ScatterData{Value: s.Price, Symbol: "triangle", SymbolSize: 14}
		case model.SignalSell:
			sells[i] = opts.ScatterData{Value: s.Price, Symbol: "triangle", SymbolSize: 14, SymbolRotate: 180}
		}
	}
	return buys, sells
}
