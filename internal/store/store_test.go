package store

import (
	"path/filepath"
	"testing"
	"time"

	"MarketLedger/internal/model"
	"MarketLedger/internal/report"
)

var now = time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)

func tempWorkbook(t *testing.T) *Workbook {
	t.Helper()
	w, err := Open(filepath.Join(t.TempDir(), "finance_data.xlsx"))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func dailyCandles(start time.Time, closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{
			Time: start.AddDate(0, 0, i),
			Open: c - 1, High: c + 1, Low: c - 2, Close: c,
			TickVolume: 100, Spread: 12, RealVolume: 5000,
		}
		out[i].Derive()
	}
	return out
}

func TestEnsureRegistry_CreatesScaffolding(t *testing.T) {
	w := tempWorkbook(t)

	created, err := w.EnsureRegistry("XAUUSDm", "Gold vs USD", now)
	if err != nil {
		t.Fatalf("ensure registry: %v", err)
	}
	if !created {
		t.Error("expected created=true for a fresh workbook")
	}
	if !w.HasSheet(TickersSheet) || !w.HasSheet(SummarySheet) {
		t.Fatal("expected Tickers and Summary sheets")
	}

	tickers, err := w.Tickers()
	if err != nil {
		t.Fatalf("read tickers: %v", err)
	}
	if len(tickers) != 1 || tickers[0] != "XAUUSDm" {
		t.Fatalf("expected default ticker, got %v", tickers)
	}

	// Second call is a no-op.
	created, err = w.EnsureRegistry("XAUUSDm", "Gold vs USD", now)
	if err != nil {
		t.Fatalf("ensure registry again: %v", err)
	}
	if created {
		t.Error("expected created=false when registry already exists")
	}
}

func TestTickers_StatusColumnFilter(t *testing.T) {
	w := tempWorkbook(t)
	if _, err := w.EnsureRegistry("A", "", now); err != nil {
		t.Fatal(err)
	}

	// Add a Status column and two more rows.
	mustSet := func(row, col int, v any) {
		t.Helper()
		if err := w.setCell(TickersSheet, row, col, v); err != nil {
			t.Fatal(err)
		}
	}
	mustSet(1, 4, "Status")
	mustSet(2, 4, model.StatusActive)
	mustSet(3, 1, "B")
	mustSet(3, 4, "Inactive")
	mustSet(4, 1, "C") // no status

	tickers, err := w.Tickers()
	if err != nil {
		t.Fatalf("read tickers: %v", err)
	}
	if len(tickers) != 1 || tickers[0] != "A" {
		t.Fatalf("expected exactly [A] with Status filter, got %v", tickers)
	}
}

func TestTickers_NoStatusColumnDropsBlanks(t *testing.T) {
	w := tempWorkbook(t)
	if _, err := w.EnsureRegistry("A", "", now); err != nil {
		t.Fatal(err)
	}
	if err := w.setCell(TickersSheet, 3, 1, "B"); err != nil {
		t.Fatal(err)
	}
	if err := w.setCell(TickersSheet, 4, 2, "description without ticker"); err != nil {
		t.Fatal(err)
	}

	tickers, err := w.Tickers()
	if err != nil {
		t.Fatalf("read tickers: %v", err)
	}
	if len(tickers) != 2 || tickers[0] != "A" || tickers[1] != "B" {
		t.Fatalf("expected [A B], got %v", tickers)
	}
}

func TestTickers_MissingSheet(t *testing.T) {
	w := tempWorkbook(t)
	if _, err := w.Tickers(); err == nil {
		t.Fatal("expected error for missing Tickers sheet")
	}
}

func TestUpsertTickerStatus(t *testing.T) {
	w := tempWorkbook(t)
	if _, err := w.EnsureRegistry("A", "first", now); err != nil {
		t.Fatal(err)
	}

	later := now.Add(26 * time.Hour)
	if err := w.UpsertTickerStatus("A", "overwritten?", later); err != nil {
		t.Fatalf("upsert existing: %v", err)
	}
	if err := w.UpsertTickerStatus("B", "second", later); err != nil {
		t.Fatalf("upsert new: %v", err)
	}

	entries, err := w.Entries()
	if err != nil {
		t.Fatalf("read entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].LastUpdated != later.Format(model.TimestampLayout) {
		t.Errorf("expected stamped timestamp, got %q", entries[0].LastUpdated)
	}
	if entries[0].Description != "first" {
		t.Errorf("description must not be overwritten when present, got %q", entries[0].Description)
	}
	if entries[1].Ticker != "B" || entries[1].Description != "second" {
		t.Errorf("unexpected appended entry: %+v", entries[1])
	}
}

func TestSeriesRoundTrip(t *testing.T) {
	w := tempWorkbook(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	in := dailyCandles(start, 2300.5, 2310.25, 2295)

	if w.HasSeries("XAUUSDm") {
		t.Fatal("unexpected data sheet before write")
	}
	if err := w.WriteSeries("XAUUSDm", in); err != nil {
		t.Fatalf("write series: %v", err)
	}

	out, hasPct, err := w.ReadSeries("XAUUSDm")
	if err != nil {
		t.Fatalf("read series: %v", err)
	}
	if !hasPct {
		t.Error("expected daily_change_pct column")
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d candles, got %d", len(in), len(out))
	}
	for i := range in {
		if !out[i].Time.Equal(in[i].Time) {
			t.Errorf("candle %d: time %v != %v", i, out[i].Time, in[i].Time)
		}
		if out[i].Close != in[i].Close || out[i].Open != in[i].Open {
			t.Errorf("candle %d: prices changed on round trip: %+v", i, out[i])
		}
		if out[i].TickVolume != in[i].TickVolume || out[i].Spread != in[i].Spread {
			t.Errorf("candle %d: volumes changed on round trip: %+v", i, out[i])
		}
	}
}

func TestReadSeries_MissingSheet(t *testing.T) {
	w := tempWorkbook(t)
	if _, _, err := w.ReadSeries("NOPE"); err == nil {
		t.Fatal("expected error for missing data sheet")
	}
}

func TestRenderReport(t *testing.T) {
	w := tempWorkbook(t)
	if _, err := w.EnsureRegistry("XAUUSDm", "Gold vs USD", now); err != nil {
		t.Fatal(err)
	}
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := w.WriteSeries("XAUUSDm", dailyCandles(start, 2300, 2310, 2295)); err != nil {
		t.Fatal(err)
	}

	rep := report.Build(w, []string{"XAUUSDm"}, 15, now)
	if err := w.RenderReport(rep); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if err := w.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	if !w.HasSheet(OverviewSheet) {
		t.Fatal("expected Overview sheet")
	}
	title, err := w.f.GetCellValue(OverviewSheet, "A1")
	if err != nil {
		t.Fatal(err)
	}
	if title != "Market Data Overview (Last 15 Days)" {
		t.Errorf("unexpected overview title: %q", title)
	}
	label, err := w.f.GetCellValue(OverviewSheet, "A4")
	if err != nil {
		t.Fatal(err)
	}
	if label != "Ticker: XAUUSDm" {
		t.Errorf("unexpected section label: %q", label)
	}

	// Summary table: one ranked row for the single ticker.
	sumTicker, err := w.f.GetCellValue(SummarySheet, "A6")
	if err != nil {
		t.Fatal(err)
	}
	if sumTicker != "XAUUSDm" {
		t.Errorf("expected summary row for XAUUSDm, got %q", sumTicker)
	}
}

func TestRenderReport_RebuildDiscardsPrevious(t *testing.T) {
	w := tempWorkbook(t)
	if _, err := w.EnsureRegistry("A", "", now); err != nil {
		t.Fatal(err)
	}
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := w.WriteSeries("A", dailyCandles(start, 10, 11)); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteSeries("B", dailyCandles(start, 20, 21)); err != nil {
		t.Fatal(err)
	}

	if err := w.RenderReport(report.Build(w, []string{"A", "B"}, 15, now)); err != nil {
		t.Fatal(err)
	}
	// Second render with fewer tickers must not leave stale sections behind.
	if err := w.RenderReport(report.Build(w, []string{"A"}, 15, now)); err != nil {
		t.Fatal(err)
	}

	rows, err := w.f.GetRows(OverviewSheet)
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range rows {
		for _, cell := range row {
			if cell == "Ticker: B" {
				t.Fatal("stale section from previous render still present")
			}
		}
	}
}
