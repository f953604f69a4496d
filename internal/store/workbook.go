package store

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"MarketLedger/internal/model"
)

// ErrSheetNotFound is returned when a named sheet is absent from the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// Well-known sheet names.
const (
	TickersSheet  = "Tickers"
	OverviewSheet = "Overview"
	SummarySheet  = "Summary"
)

// seriesColumns is the persisted column order of a data sheet.
var seriesColumns = []string{
	"time", "open", "high", "low", "close",
	"range", "daily_change", "daily_change_pct",
	"tick_volume", "spread", "real_volume",
}

// Workbook wraps a single .xlsx file holding the ticker registry, one data
// sheet per ticker, and the derived Overview and Summary sheets. Save
// rewrites the whole file; concurrent external access is not guarded against.
type Workbook struct {
	path    string
	f       *excelize.File
	created bool
	styles  map[string]int
}

// Open loads the workbook at path, or starts a fresh one if the file does
// not exist yet.
func Open(path string) (*Workbook, error) {
	w := &Workbook{path: path, styles: make(map[string]int)}
	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
		w.f = f
	case errors.Is(err, fs.ErrNotExist):
		w.f = excelize.NewFile()
		w.created = true
	default:
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return w, nil
}

// Path returns the backing file path.
func (w *Workbook) Path() string { return w.path }

// Created reports whether this workbook was started fresh (no file on disk).
func (w *Workbook) Created() bool { return w.created }

// Save rewrites the whole workbook file.
func (w *Workbook) Save() error {
	if err := w.f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}

// Close releases the underlying file handle without saving.
func (w *Workbook) Close() error { return w.f.Close() }

// HasSheet reports whether a sheet with the given name exists.
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.f.GetSheetIndex(name)
	return err == nil && idx != -1
}

// Recreate deletes any existing sheet with the given name and creates an
// empty one in its place.
func (w *Workbook) Recreate(name string) error {
	if w.HasSheet(name) {
		if err := w.f.DeleteSheet(name); err != nil {
			return fmt.Errorf("delete sheet %s: %w", name, err)
		}
	}
	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return nil
}

// SeriesSheetName returns the data sheet name for a ticker.
func SeriesSheetName(ticker string) string { return ticker + " Data" }

// HasSeries reports whether a data sheet exists for the ticker.
func (w *Workbook) HasSeries(ticker string) bool {
	return w.HasSheet(SeriesSheetName(ticker))
}

// WriteSeries replaces the ticker's data sheet with the given candles.
// Candles are written in the order given; callers pass merged, time-ordered
// series.
func (w *Workbook) WriteSeries(ticker string, candles []model.Candle) error {
	sheet := SeriesSheetName(ticker)
	if err := w.Recreate(sheet); err != nil {
		return err
	}
	for col, name := range seriesColumns {
		if err := w.setCell(sheet, 1, col+1, name); err != nil {
			return err
		}
	}
	for i, c := range candles {
		row := i + 2
		values := []any{
			c.Time.Format(model.TimestampLayout),
			c.Open, c.High, c.Low, c.Close,
			c.Range, c.DailyChange, c.DailyChangePct,
			c.TickVolume, c.Spread, c.RealVolume,
		}
		for col, v := range values {
			if err := w.setCell(sheet, row, col+1, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadSeries loads the ticker's data sheet. Columns are matched by header
// name, so sheets written before the derived columns existed still load;
// hasChangePct tells the caller whether daily_change_pct was present.
func (w *Workbook) ReadSeries(ticker string) (candles []model.Candle, hasChangePct bool, err error) {
	sheet := SeriesSheetName(ticker)
	if !w.HasSheet(sheet) {
		return nil, false, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, false, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, false, nil
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		colIdx[name] = i
	}
	_, hasChangePct = colIdx["daily_change_pct"]

	for _, row := range rows[1:] {
		c, perr := parseSeriesRow(row, colIdx)
		if perr != nil {
			return nil, false, fmt.Errorf("sheet %s: %w", sheet, perr)
		}
		candles = append(candles, c)
	}
	return candles, hasChangePct, nil
}

func parseSeriesRow(row []string, colIdx map[string]int) (model.Candle, error) {
	get := func(name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	t, err := time.Parse(model.TimestampLayout, get("time"))
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse time %q: %w", get("time"), err)
	}
	c := model.Candle{Time: t}

	floatFields := map[string]*float64{
		"open": &c.Open, "high": &c.High, "low": &c.Low, "close": &c.Close,
		"range": &c.Range, "daily_change": &c.DailyChange, "daily_change_pct": &c.DailyChangePct,
	}
	for name, dst := range floatFields {
		if s := get(name); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return model.Candle{}, fmt.Errorf("parse %s %q: %w", name, s, err)
			}
			*dst = v
		}
	}
	intFields := map[string]*int64{
		"tick_volume": &c.TickVolume, "spread": &c.Spread, "real_volume": &c.RealVolume,
	}
	for name, dst := range intFields {
		if s := get(name); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return model.Candle{}, fmt.Errorf("parse %s %q: %w", name, s, err)
			}
			*dst = v
		}
	}
	return c, nil
}

func (w *Workbook) setCell(sheet string, row, col int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return w.f.SetCellValue(sheet, cell, v)
}

func (w *Workbook) setStyle(sheet string, row, col, styleID int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, cell, cell, styleID)
}
