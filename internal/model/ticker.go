package model

// StatusActive marks a registry entry as eligible for capture.
// The match is exact and case-sensitive.
const StatusActive = "Active"

// TickerEntry is one row of the ticker registry sheet.
type TickerEntry struct {
	Ticker      string
	Description string
	Status      string
	LastUpdated string // human-readable, "2006-01-02 15:04"
}

// TimestampLayout is the format used for registry timestamps and
// generated-at lines in the report sheets.
const TimestampLayout = "2006-01-02 15:04"
