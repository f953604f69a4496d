// Package job sequences a capture run: ensure the registry exists, list the
// active tickers, fetch+merge+persist each one, then rebuild the report
// sheets. Failures are isolated per ticker; only a missing data source or an
// unreadable registry stops a run, and even those are logged rather than
// propagated.
package job

import (
	"errors"
	"fmt"
	"log"
	"time"

	"MarketLedger/internal/collector"
	"MarketLedger/internal/config"
	"MarketLedger/internal/model"
	"MarketLedger/internal/recorder"
	"MarketLedger/internal/report"
	"MarketLedger/internal/series"
	"MarketLedger/internal/store"
)

// Runner drives one capture run end to end.
type Runner struct {
	Cfg       *config.Config
	Collector *collector.Collector
	Recorder  recorder.Recorder
}

// NewRunner creates a new Runner.
func NewRunner(cfg *config.Config, col *collector.Collector, rec recorder.Recorder) *Runner {
	return &Runner{Cfg: cfg, Collector: col, Recorder: rec}
}

// Run executes one capture run. All failures surface as log lines; the
// process outcome is "report and continue".
func (r *Runner) Run() {
	start := time.Now()
	log.Printf("[INFO] capture run starting (workbook: %s)", r.Cfg.Workbook.Path)

	wb, err := store.Open(r.Cfg.Workbook.Path)
	if err != nil {
		log.Printf("[ERROR] open workbook: %v", err)
		return
	}
	defer wb.Close()

	created, err := wb.EnsureRegistry(r.Cfg.Workbook.DefaultTicker, r.Cfg.Workbook.DefaultDescription, time.Now())
	if err != nil {
		log.Printf("[ERROR] ensure registry: %v", err)
		return
	}
	if created {
		if err := wb.Save(); err != nil {
			log.Printf("[ERROR] save new workbook: %v", err)
			return
		}
	}

	tickers, err := wb.Tickers()
	if err != nil {
		// Registry unreadable: abort, no partial report.
		log.Printf("[ERROR] read tickers: %v", err)
		return
	}
	if len(tickers) == 0 {
		log.Println("[WARN] no tickers found in the workbook")
		return
	}

	var succeeded, skipped int
	for _, ticker := range tickers {
		err := r.processTicker(wb, ticker)
		if err == nil {
			succeeded++
			continue
		}
		skipped++
		if errors.Is(err, collector.ErrConnection) {
			// No source connection means no ticker can be processed.
			log.Printf("[ERROR] %s: %v; aborting run", ticker, err)
			r.recordRun(len(tickers), succeeded, skipped, start)
			return
		}
		log.Printf("[WARN] skipping %s: %v", ticker, err)
	}

	rep := report.Build(wb, tickers, r.Cfg.Capture.OverviewDays, time.Now())
	if err := wb.RenderReport(rep); err != nil {
		log.Printf("[ERROR] render report: %v", err)
	} else if err := wb.Save(); err != nil {
		log.Printf("[ERROR] save workbook after report: %v", err)
	} else {
		log.Println("[INFO] overview sheet updated with charts")
	}

	r.recordRun(len(tickers), succeeded, skipped, start)
	log.Printf("[INFO] market data update completed (%d ok, %d skipped)", succeeded, skipped)
}

// processTicker runs fetch, merge, persist, and registry stamp for one
// ticker. Any error leaves the ticker's sheets untouched apart from work
// already saved.
func (r *Runner) processTicker(wb *store.Workbook, ticker string) error {
	candles, err := r.Collector.Fetch(ticker)
	if err != nil {
		status := "FAILED"
		if errors.Is(err, collector.ErrEmptyFetch) || errors.Is(err, collector.ErrUnknownSymbol) {
			status = "SKIPPED"
		}
		r.recordFetch(&recorder.FetchEvent{Ticker: ticker, Status: status, Error: err.Error()})
		return err
	}

	merged, err := r.mergeWithExisting(wb, ticker, candles)
	if err != nil {
		r.recordFetch(&recorder.FetchEvent{Ticker: ticker, Candles: len(candles), Status: "FAILED", Error: err.Error()})
		return err
	}

	if err := wb.WriteSeries(ticker, merged); err != nil {
		r.recordFetch(&recorder.FetchEvent{Ticker: ticker, Candles: len(candles), Status: "FAILED", Error: err.Error()})
		return fmt.Errorf("write series: %w", err)
	}
	if err := wb.UpsertTickerStatus(ticker, "", time.Now()); err != nil {
		log.Printf("[WARN] update ticker status for %s: %v", ticker, err)
	}
	if err := wb.Save(); err != nil {
		r.recordFetch(&recorder.FetchEvent{Ticker: ticker, Candles: len(candles), Status: "FAILED", Error: err.Error()})
		return fmt.Errorf("save workbook: %w", err)
	}

	log.Printf("[INFO] %s data written to %q (%d rows)", ticker, store.SeriesSheetName(ticker), len(merged))
	r.recordFetch(&recorder.FetchEvent{Ticker: ticker, Candles: len(candles), SeriesRows: len(merged), Status: "OK"})
	return nil
}

func (r *Runner) mergeWithExisting(wb *store.Workbook, ticker string, candles []model.Candle) ([]model.Candle, error) {
	if !wb.HasSeries(ticker) {
		return series.Merge(nil, candles), nil
	}
	existing, _, err := wb.ReadSeries(ticker)
	if err != nil {
		return nil, fmt.Errorf("read existing series: %w", err)
	}
	return series.Merge(existing, candles), nil
}

func (r *Runner) recordFetch(evt *recorder.FetchEvent) {
	if err := r.Recorder.RecordFetch(evt); err != nil {
		log.Printf("[ERROR] record fetch event: %v", err)
	}
}

func (r *Runner) recordRun(tickers, succeeded, skipped int, start time.Time) {
	if err := r.Recorder.RecordRun(&recorder.RunEvent{
		Tickers:    tickers,
		Succeeded:  succeeded,
		Skipped:    skipped,
		DurationMS: time.Since(start).Milliseconds(),
	}); err != nil {
		log.Printf("[ERROR] record run event: %v", err)
	}
}
