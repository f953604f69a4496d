package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"MarketLedger/internal/model"
)

// MTBridgeFetcher implements Fetcher against an HTTP bridge in front of a
// MetaTrader terminal. Each Open creates a terminal session on the bridge;
// Close tears it down so the terminal connection is never leaked.
type MTBridgeFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewMTBridgeFetcher creates a new fetcher with optional proxy support.
func NewMTBridgeFetcher(baseURL, apiKey, proxyURL string) *MTBridgeFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &MTBridgeFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *MTBridgeFetcher) Name() string { return "mt-bridge" }

type mtSession struct {
	f       *MTBridgeFetcher
	token   string
	login   int64
	server  string
}

func (s *mtSession) Account() string {
	return fmt.Sprintf("account %d @ %s", s.login, s.server)
}

func (s *mtSession) Close() error {
	req, err := http.NewRequest("POST", s.f.BaseURL+"/api/v1/disconnect", nil)
	if err != nil {
		return err
	}
	s.f.authorize(req)
	req.Header.Set("X-Session-Token", s.token)
	resp, err := s.f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("disconnect: status %d", resp.StatusCode)
	}
	return nil
}

// Open establishes a terminal session. A bridge that answers without account
// info is treated as a connection failure, matching terminals that start
// without a logged-in account.
func (f *MTBridgeFetcher) Open() (Session, error) {
	req, err := http.NewRequest("POST", f.BaseURL+"/api/v1/connect", nil)
	if err != nil {
		return nil, err
	}
	f.authorize(req)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("connect: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Token   string `json:"token"`
		Account *struct {
			Login  int64  `json:"login"`
			Server string `json:"server"`
		} `json:"account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode connect response: %w", err)
	}
	if result.Account == nil {
		return nil, fmt.Errorf("connect: no account info")
	}
	return &mtSession{f: f, token: result.Token, login: result.Account.Login, server: result.Account.Server}, nil
}

// mtRate is the candle shape returned by the bridge, mirroring the terminal's
// rates structure.
type mtRate struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
	Spread     int64   `json:"spread"`
	RealVolume int64   `json:"real_volume"`
}

func (f *MTBridgeFetcher) Candles(sess Session, symbol string, tf model.Timeframe, from time.Time, count int) ([]model.Candle, error) {
	ms, ok := sess.(*mtSession)
	if !ok {
		return nil, fmt.Errorf("session does not belong to %s", f.Name())
	}

	payload, _ := json.Marshal(map[string]any{
		"symbol":    symbol,
		"timeframe": string(tf),
		"from":      from.Unix(),
		"count":     count,
	})
	req, err := http.NewRequest("POST", f.BaseURL+"/api/v1/rates", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	f.authorize(req)
	req.Header.Set("X-Session-Token", ms.token)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch rates: status %d, body: %s", resp.StatusCode, string(body))
	}

	var rates []mtRate
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}

	candles := make([]model.Candle, len(rates))
	for i, r := range rates {
		candles[i] = model.Candle{
			Time:       time.Unix(r.Time, 0).UTC(),
			Open:       r.Open,
			High:       r.High,
			Low:        r.Low,
			Close:      r.Close,
			TickVolume: r.TickVolume,
			Spread:     r.Spread,
			RealVolume: r.RealVolume,
		}
	}
	return candles, nil
}

func (f *MTBridgeFetcher) authorize(req *http.Request) {
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
}
