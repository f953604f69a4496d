package collector

import (
	"errors"
	"testing"
	"time"

	"MarketLedger/internal/model"
)

func TestFetch_SessionClosedOnSuccess(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f := &MockFetcher{Data: map[string][]model.Candle{
		"XAUUSDm": {
			{Time: day.AddDate(0, 0, 1), Open: 10, High: 12, Low: 9, Close: 11},
			{Time: day, Open: 9, High: 11, Low: 8, Close: 10},
		},
	}}
	c := NewCollector(f, model.TimeframeD1, 100)

	candles, err := c.Fetch("XAUUSDm")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if f.Opens != 1 || f.Closes != 1 {
		t.Errorf("expected one open/close pair, got %d/%d", f.Opens, f.Closes)
	}
	if !candles[0].Time.Equal(day) {
		t.Error("expected candles sorted ascending by time")
	}
	if candles[0].Range != 3 || candles[0].DailyChange != 1 {
		t.Errorf("expected derived fields computed, got range=%.1f change=%.1f", candles[0].Range, candles[0].DailyChange)
	}
	if candles[0].DailyChangePct == 0 {
		t.Error("expected daily_change_pct computed")
	}
}

func TestFetch_SessionClosedOnFetchError(t *testing.T) {
	f := &MockFetcher{FetchErr: errors.New("wire broke")}
	c := NewCollector(f, model.TimeframeD1, 100)

	if _, err := c.Fetch("XAUUSDm"); err == nil {
		t.Fatal("expected fetch error")
	}
	if f.Opens != 1 || f.Closes != 1 {
		t.Errorf("session must be released on fetch failure, got %d opens / %d closes", f.Opens, f.Closes)
	}
}

func TestFetch_EmptyResult(t *testing.T) {
	f := &MockFetcher{Data: map[string][]model.Candle{}}
	c := NewCollector(f, model.TimeframeD1, 100)

	_, err := c.Fetch("UNKNOWN")
	if !errors.Is(err, ErrEmptyFetch) {
		t.Fatalf("expected ErrEmptyFetch, got %v", err)
	}
	if f.Closes != 1 {
		t.Error("session must be released on an empty fetch")
	}
}

func TestFetch_ConnectionError(t *testing.T) {
	f := &MockFetcher{OpenErr: errors.New("terminal down")}
	c := NewCollector(f, model.TimeframeD1, 100)

	_, err := c.Fetch("XAUUSDm")
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
