package recorder

// FetchEvent records the outcome of one ticker's capture within a run.
type FetchEvent struct {
	Ticker     string
	Candles    int    // candles returned by the source
	SeriesRows int    // series length after merge
	Status     string // "OK", "SKIPPED", "FAILED"
	Error      string
}

// RunEvent summarizes one complete capture run.
type RunEvent struct {
	Tickers    int
	Succeeded  int
	Skipped    int
	DurationMS int64
}

// Recorder persists capture history for later inspection.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	RecordRun(evt *RunEvent) error
	Close() error
}
