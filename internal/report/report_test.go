package report

import (
	"testing"
	"time"

	"MarketLedger/internal/model"
)

// fakeSource serves in-memory series, standing in for the workbook.
type fakeSource struct {
	data   map[string][]model.Candle
	hasPct bool
	errFor map[string]error
}

func (f *fakeSource) HasSeries(ticker string) bool {
	_, ok := f.data[ticker]
	return ok
}

func (f *fakeSource) ReadSeries(ticker string) ([]model.Candle, bool, error) {
	if err := f.errFor[ticker]; err != nil {
		return nil, false, err
	}
	return f.data[ticker], f.hasPct, nil
}

func candles(start time.Time, closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{Time: start.AddDate(0, 0, i), Open: c - 1, High: c + 1, Low: c - 2, Close: c}
	}
	return out
}

var t0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestBuild_SkipsMissingSeries(t *testing.T) {
	src := &fakeSource{data: map[string][]model.Candle{
		"GOLD": candles(t0, 10, 11, 12),
	}}
	r := Build(src, []string{"GOLD", "MISSING"}, 15, t0)

	if len(r.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(r.Sections))
	}
	if r.Sections[0].Ticker != "GOLD" {
		t.Errorf("expected GOLD section, got %s", r.Sections[0].Ticker)
	}
}

func TestBuild_WindowAndSummary(t *testing.T) {
	src := &fakeSource{hasPct: true, data: map[string][]model.Candle{
		"GOLD": candles(t0, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19),
	}}
	r := Build(src, []string{"GOLD"}, 5, t0)

	sec := r.Sections[0]
	if len(sec.Window) != 5 {
		t.Fatalf("expected trailing 5 entries, got %d", len(sec.Window))
	}
	if sec.Window[0].Close != 15 || sec.Window[4].Close != 19 {
		t.Errorf("expected window closes 15..19, got %.0f..%.0f", sec.Window[0].Close, sec.Window[4].Close)
	}
	if !sec.HasChangePct {
		t.Error("expected HasChangePct from source")
	}

	if len(r.Summary) != 1 {
		t.Fatalf("expected 1 summary entry, got %d", len(r.Summary))
	}
	pc := r.Summary[0]
	if pc.FirstClose != 15 || pc.LastClose != 19 {
		t.Errorf("expected summary over window first/last 15/19, got %.0f/%.0f", pc.FirstClose, pc.LastClose)
	}
}

func TestBuild_SinglePointNoSummary(t *testing.T) {
	src := &fakeSource{data: map[string][]model.Candle{
		"GOLD": candles(t0, 42),
	}}
	r := Build(src, []string{"GOLD"}, 15, t0)

	if len(r.Sections) != 1 {
		t.Fatalf("expected table section for single-point window, got %d sections", len(r.Sections))
	}
	if len(r.Summary) != 0 {
		t.Errorf("expected no summary entry for a 1-entry window, got %d", len(r.Summary))
	}
}

func TestBuild_SummaryRankedByChangePct(t *testing.T) {
	src := &fakeSource{data: map[string][]model.Candle{
		"FLAT": candles(t0, 100, 100),
		"UP":   candles(t0, 100, 120),
		"DOWN": candles(t0, 100, 90),
	}}
	r := Build(src, []string{"FLAT", "UP", "DOWN"}, 15, t0)

	if len(r.Summary) != 3 {
		t.Fatalf("expected 3 summary entries, got %d", len(r.Summary))
	}
	order := []string{"UP", "FLAT", "DOWN"}
	for i, want := range order {
		if r.Summary[i].Ticker != want {
			t.Errorf("summary rank %d: expected %s, got %s", i, want, r.Summary[i].Ticker)
		}
	}
}

func TestBuild_ChartDescriptor(t *testing.T) {
	src := &fakeSource{data: map[string][]model.Candle{
		"XAUUSDm": candles(t0, 10, 11, 12),
	}}
	r := Build(src, []string{"XAUUSDm"}, 15, t0)

	c := r.Sections[0].Chart
	if c.Title != "XAUUSDm - Close Price (Last 15 Days)" {
		t.Errorf("unexpected chart title: %q", c.Title)
	}
	if c.XTitle != "Date" || c.YTitle != "Close Price" {
		t.Errorf("unexpected axis titles: %q / %q", c.XTitle, c.YTitle)
	}
	if c.WidthPx == 0 || c.HeightPx == 0 {
		t.Error("expected fixed chart dimensions")
	}
}

func TestBuild_ReadErrorSkipsTicker(t *testing.T) {
	src := &fakeSource{
		data: map[string][]model.Candle{
			"GOOD": candles(t0, 10, 11),
			"BAD":  candles(t0, 1, 2),
		},
		errFor: map[string]error{"BAD": errFake},
	}
	r := Build(src, []string{"BAD", "GOOD"}, 15, t0)

	if len(r.Sections) != 1 || r.Sections[0].Ticker != "GOOD" {
		t.Fatalf("expected only GOOD section, got %+v", r.Sections)
	}
}

var errFake = fakeError("sheet unreadable")

type fakeError string

func (e fakeError) Error() string { return string(e) }
