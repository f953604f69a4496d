package model

import "fmt"

// Timeframe is the candle granularity requested from the data source.
type Timeframe string

const (
	TimeframeH1 Timeframe = "H1"
	TimeframeD1 Timeframe = "D1"
	TimeframeW1 Timeframe = "W1"
)

// ParseTimeframe validates a config string against the known timeframes.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeH1, TimeframeD1, TimeframeW1:
		return Timeframe(s), nil
	default:
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
}
