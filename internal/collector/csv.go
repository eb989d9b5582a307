package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"TrendScope/internal/errs"
	"TrendScope/internal/model"
)

// DefaultCSVPath is read when csv_path is not configured.
const DefaultCSVPath = "data/ohlcv.csv"

var csvRequired = []string{"Date", model.ColOpen, model.ColHigh, model.ColLow, model.ColClose, model.ColVolume}

var csvDateLayouts = []string{
	model.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"01/02/2006",
}

// CSVFetcher reads bars from a local CSV file with a Date column and OHLCV
// columns. Header names are matched case-insensitively.
type CSVFetcher struct {
	Path string
}

// NewCSVFetcher creates a fetcher for the given file.
func NewCSVFetcher(path string) *CSVFetcher {
	if path == "" {
		path = DefaultCSVPath
	}
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return KeyCSV }

// Fetch loads the file and keeps rows between spec.Start and spec.End inclusive.
func (f *CSVFetcher) Fetch(ctx context.Context, spec model.FetchSpec) (*model.BarSeries, error) {
	start, end, err := spec.Range()
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "invalid date range")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.DataFetch(f.Name(), err, "fetch cancelled")
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "CSV file not found: %s", f.Path)
	}
	defer file.Close()

	rows, err := readCSV(file)
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "read %s", f.Path)
	}
	if !end.IsZero() {
		// an end date covers the whole day
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	rows = filterRange(rows, start, end)
	if len(rows) == 0 {
		return nil, errs.DataFetch(f.Name(), nil, "no rows in %s for the requested range", f.Path)
	}

	interval := spec.Interval
	if interval == "" {
		interval = model.DefaultInterval
	}
	bars, err := model.NewBarSeries(spec.Ticker, interval, rows)
	if err != nil {
		return nil, errs.DataFetch(f.Name(), err, "build series from %s", f.Path)
	}
	return bars, nil
}

func readCSV(r io.Reader) ([]model.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	cols := make([]int, len(csvRequired))
	for i, name := range csvRequired {
		pos, ok := index[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
		}
		cols[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var rows []model.OHLCV
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := parseCSVDate(record[cols[0]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values := make([]float64, 5)
		for i := range values {
			if values[i], err = parseCSVFloat(record[cols[i+1]]); err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, csvRequired[i+1], err)
			}
		}
		rows = append(rows, model.OHLCV{
			Time:   t,
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}
	return rows, nil
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseCSVFloat reads empty cells as NaN.
func parseCSVFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
