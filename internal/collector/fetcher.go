package collector

import (
	"errors"
	"time"

	"MarketLedger/internal/model"
)

// Error kinds surfaced by fetchers. The orchestrator distinguishes them
// with errors.Is to decide between skipping one ticker and aborting the run.
var (
	// ErrConnection means the data source terminal could not be reached or
	// reported no account context.
	ErrConnection = errors.New("data source connection failed")
	// ErrUnknownSymbol means the source does not recognize the ticker.
	ErrUnknownSymbol = errors.New("symbol not found")
	// ErrEmptyFetch means the source answered but returned zero candles.
	ErrEmptyFetch = errors.New("no candles returned")
)

// Session is a live connection to the data source. It is scoped to a single
// fetch and must be closed on every exit path.
type Session interface {
	// Account describes the connected account, for logging.
	Account() string
	Close() error
}

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// Open establishes a session with the data source.
	Open() (Session, error)
	// Candles returns up to count candles of the given timeframe ending at
	// the from time, oldest first. An empty result means the symbol is
	// unknown or has no data.
	Candles(sess Session, symbol string, tf model.Timeframe, from time.Time, count int) ([]model.Candle, error)
	Name() string
}
