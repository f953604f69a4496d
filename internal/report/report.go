// Package report derives the Overview and Summary presentation from
// persisted candle series. Building a Report is pure; rendering it into the
// workbook is the store's job, so the derivation stays testable without any
// spreadsheet on disk.
package report

import (
	"fmt"
	"log"
	"sort"
	"time"

	"MarketLedger/internal/model"
	"MarketLedger/internal/series"
)

// SeriesSource is the read side of the sheet store the builder consumes.
type SeriesSource interface {
	HasSeries(ticker string) bool
	// ReadSeries returns the persisted candles and whether the sheet
	// carries the daily_change_pct column.
	ReadSeries(ticker string) ([]model.Candle, bool, error)
}

// Chart describes the single-series line chart of one ticker section.
type Chart struct {
	Title    string
	XTitle   string
	YTitle   string
	WidthPx  uint
	HeightPx uint
	// DateFmt is the number format applied to the category axis.
	DateFmt string
}

// Section is one ticker's block in the Overview: a trailing-window table
// and its chart.
type Section struct {
	Ticker       string
	Window       []model.Candle
	HasChangePct bool
	Chart        Chart
}

// Report is the derived view rebuilt from scratch on every run.
type Report struct {
	Days        int
	GeneratedAt time.Time
	Sections    []Section
	// Summary holds the cross-ticker price changes, ranked descending by
	// percentage change. Tickers whose window has fewer than two entries
	// are absent.
	Summary []series.PriceChange
}

// Build derives the report for the given tickers over the trailing days
// window. Tickers without a data sheet, with unreadable sheets, or with
// empty windows are skipped and logged; they never fail the whole report.
func Build(src SeriesSource, tickers []string, days int, now time.Time) *Report {
	r := &Report{Days: days, GeneratedAt: now}

	for _, ticker := range tickers {
		if !src.HasSeries(ticker) {
			log.Printf("[WARN] no data sheet for %s, skipping in overview", ticker)
			continue
		}
		candles, hasPct, err := src.ReadSeries(ticker)
		if err != nil {
			log.Printf("[ERROR] read series for %s: %v", ticker, err)
			continue
		}
		window := series.Window(candles, days)
		if len(window) == 0 {
			continue
		}

		r.Sections = append(r.Sections, Section{
			Ticker:       ticker,
			Window:       window,
			HasChangePct: hasPct,
			Chart: Chart{
				Title:    fmt.Sprintf("%s - Close Price (Last %d Days)", ticker, days),
				XTitle:   "Date",
				YTitle:   "Close Price",
				WidthPx:  567,
				HeightPx: 265,
				DateFmt:  "DD-MMM",
			},
		})

		if pc, ok := series.ChangeOver(ticker, window); ok {
			r.Summary = append(r.Summary, pc)
		}
	}

	sort.SliceStable(r.Summary, func(i, j int) bool {
		return r.Summary[i].ChangePct > r.Summary[j].ChangePct
	})
	return r
}
