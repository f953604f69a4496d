package series

import (
	"sort"

	"MarketLedger/internal/model"
)

// Merge combines an existing persisted series with a freshly fetched batch.
// Entries are deduplicated by candle time; when both sides carry the same
// time, the incoming value supersedes the existing one (overlapping fetch
// windows are expected and the incoming batch reflects the latest state of
// the source). The result is sorted ascending by time.
//
// An empty incoming batch returns the existing series unchanged.
func Merge(existing, incoming []model.Candle) []model.Candle {
	if len(incoming) == 0 {
		return existing
	}

	byTime := make(map[int64]model.Candle, len(existing)+len(incoming))
	for _, c := range existing {
		byTime[c.Time.Unix()] = c
	}
	for _, c := range incoming {
		byTime[c.Time.Unix()] = c
	}

	merged := make([]model.Candle, 0, len(byTime))
	for _, c := range byTime {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Time.Before(merged[j].Time) })
	return merged
}

// Window returns the trailing days entries of a series in ascending time
// order. If the series is shorter than days, the whole series is returned.
// The returned slice aliases the input.
func Window(s []model.Candle, days int) []model.Candle {
	if days <= 0 || len(s) == 0 {
		return nil
	}
	if len(s) > days {
		return s[len(s)-days:]
	}
	return s
}

// PriceChange summarizes the close-price movement over an overview window.
type PriceChange struct {
	Ticker     string
	FirstClose float64
	LastClose  float64
	Change     float64
	ChangePct  float64
}

// ChangeOver computes the price change between the literal first and last
// entries of a window. A delta needs at least two points; ok is false for
// shorter windows.
func ChangeOver(ticker string, window []model.Candle) (pc PriceChange, ok bool) {
	if len(window) < 2 {
		return PriceChange{}, false
	}
	first := window[0].Close
	last := window[len(window)-1].Close
	change := last - first
	pc = PriceChange{
		Ticker:     ticker,
		FirstClose: first,
		LastClose:  last,
		Change:     change,
	}
	if first != 0 {
		pc.ChangePct = change / first * 100
	}
	return pc, true
}
