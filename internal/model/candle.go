package model

import "time"

// Candle represents a single OHLCV bar for one instrument.
type Candle struct {
	Time       time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	TickVolume int64
	Spread     int64
	RealVolume int64

	// Derived fields, computed once after fetch.
	Range          float64
	DailyChange    float64
	DailyChangePct float64
}

// Derive fills the calculated fields from the raw OHLC values.
// No validation of the raw values is performed.
func (c *Candle) Derive() {
	c.Range = c.High - c.Low
	c.DailyChange = c.Close - c.Open
	if c.Open != 0 {
		c.DailyChangePct = c.DailyChange / c.Open * 100
	} else {
		c.DailyChangePct = 0
	}
}
