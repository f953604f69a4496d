package collector

import (
	"fmt"
	"log"
	"sort"
	"time"

	"MarketLedger/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// With a nil Data map it generates candles around Price; with a non-nil map,
// a missing symbol yields an empty fetch.
type MockFetcher struct {
	Price    float64
	Data     map[string][]model.Candle
	OpenErr  error
	FetchErr error
	Opens    int
	Closes   int
}

type mockSession struct{ f *MockFetcher }

func (s *mockSession) Account() string { return "mock account" }
func (s *mockSession) Close() error {
	s.f.Closes++
	return nil
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Open() (Session, error) {
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	m.Opens++
	return &mockSession{f: m}, nil
}

func (m *MockFetcher) Candles(_ Session, symbol string, _ model.Timeframe, _ time.Time, count int) ([]model.Candle, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if m.Data == nil {
		return GenerateCandles(m.Price, time.Now(), count), nil
	}
	candles := m.Data[symbol]
	if len(candles) > count {
		candles = candles[len(candles)-count:]
	}
	return candles, nil
}

// GenerateCandles builds count consecutive daily candles ending the day
// before start, drifting around basePrice.
func GenerateCandles(basePrice float64, start time.Time, count int) []model.Candle {
	day := start.Truncate(24 * time.Hour)
	candles := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		candles[i] = model.Candle{
			Time:       day.AddDate(0, 0, -(count - i)),
			Open:       p * 0.999,
			High:       p * 1.005,
			Low:        p * 0.995,
			Close:      p,
			TickVolume: 1000,
			Spread:     12,
			RealVolume: 1000000,
		}
	}
	return candles
}

// Collector owns the per-fetch session lifecycle and derived-field
// computation.
type Collector struct {
	Fetcher   Fetcher
	Timeframe model.Timeframe
	Count     int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, tf model.Timeframe, count int) *Collector {
	return &Collector{Fetcher: fetcher, Timeframe: tf, Count: count}
}

// Fetch opens a session, pulls the most recent candles for ticker, and
// closes the session. The session is released on every exit path. Returned
// candles are sorted ascending by time with derived fields populated.
func (c *Collector) Fetch(ticker string) ([]model.Candle, error) {
	sess, err := c.Fetcher.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Printf("[WARN] close %s session: %v", c.Fetcher.Name(), cerr)
		}
	}()
	log.Printf("[INFO] connected to %s (%s)", c.Fetcher.Name(), sess.Account())

	candles, err := c.Fetcher.Candles(sess, ticker, c.Timeframe, time.Now(), c.Count)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", ticker, ErrEmptyFetch)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	for i := range candles {
		candles[i].Derive()
	}
	log.Printf("[INFO] fetched %d candles for %s", len(candles), ticker)
	return candles, nil
}
