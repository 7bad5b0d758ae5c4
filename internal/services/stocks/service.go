// Package stocks retrieves quote snapshots from FinancialModelingPrep.
package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MaximilianoIS/EconDecode/internal/extract"
)

// monthTradingDays is the historical window used for the one-month
// change: 22 trading days back approximates a calendar month.
const monthTradingDays = 22

// Snapshot is the stock data attached to profile responses. Price is
// the only field the service insists on; the rest is best-effort.
type Snapshot struct {
	Symbol             string   `json:"symbol"`
	Price              float64  `json:"price"`
	Change             float64  `json:"change"`
	ChangePercent      float64  `json:"change_percent"`
	MarketCap          *float64 `json:"market_cap,omitempty"`
	Name               string   `json:"name,omitempty"`
	MonthChangePercent *float64 `json:"month_change_percent,omitempty"`
}

// Service fetches quotes and historical closes from FMP.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures the Service.
type Option func(*Service)

// WithBaseURL overrides the FMP base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// NewService creates a stocks service.
func NewService(apiKey string, opts ...Option) *Service {
	s := &Service{
		apiKey:  apiKey,
		baseURL: "https://financialmodelingprep.com/api/v3",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool { return s.apiKey != "" }

type quotePayload struct {
	Symbol            string   `json:"symbol"`
	Price             *float64 `json:"price"`
	Change            float64  `json:"change"`
	ChangesPercentage float64  `json:"changesPercentage"`
	MarketCap         *float64 `json:"marketCap"`
	Name              string   `json:"name"`
}

type historicalPayload struct {
	Historical []struct {
		Close *float64 `json:"close"`
	} `json:"historical"`
	ErrorMessage string `json:"Error Message"`
}

// Snapshot fetches the current quote and a month of history for one
// ticker. The returned note carries secondary problems (failed month
// change, quote mismatch) that did not prevent getting a price; err is
// non-nil only when no price could be obtained at all.
func (s *Service) Snapshot(ctx context.Context, ticker string) (*Snapshot, string, error) {
	if !s.Configured() {
		return nil, "", fmt.Errorf("FinancialModelingPrep API key not configured")
	}
	upper := strings.ToUpper(ticker)
	if ticker == "" || upper == extract.TickerPrivate || upper == extract.TickerUnknown || upper == "N/A" {
		return nil, "", fmt.Errorf("ticker is not applicable or unknown for this company")
	}

	snap := &Snapshot{}
	var problems []string

	if err := s.fetchQuote(ctx, ticker, snap); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("FMP quote fetch failed")
		problems = append(problems, err.Error())
	}
	if err := s.fetchMonthChange(ctx, ticker, snap); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("FMP historical fetch failed")
		problems = append(problems, err.Error())
	}

	// Price is the one field that must come back; without it the whole
	// lookup counts as failed regardless of what else arrived.
	if snap.Price == 0 {
		message := strings.Join(problems, ". ")
		if message == "" {
			message = "Failed to retrieve essential stock data."
		}
		return nil, "", fmt.Errorf("%s", message)
	}
	return snap, strings.Join(problems, ". "), nil
}

func (s *Service) fetchQuote(ctx context.Context, ticker string, snap *Snapshot) error {
	var quotes []quotePayload
	if err := s.getJSON(ctx, fmt.Sprintf("/quote/%s", ticker), &quotes); err != nil {
		return fmt.Errorf("error fetching FMP quote: %w", err)
	}
	if len(quotes) == 0 {
		return fmt.Errorf("no quote data from FMP for %s", ticker)
	}

	quote := quotes[0]
	// FMP can answer with a different symbol when the requested one is
	// not found directly; that data must not be attributed to ticker.
	if !strings.EqualFold(quote.Symbol, ticker) {
		return fmt.Errorf("FMP quote data mismatch for %s", ticker)
	}
	snap.Symbol = quote.Symbol
	if quote.Price != nil {
		snap.Price = *quote.Price
	}
	snap.Change = quote.Change
	snap.ChangePercent = quote.ChangesPercentage
	snap.MarketCap = quote.MarketCap
	snap.Name = quote.Name
	return nil
}

func (s *Service) fetchMonthChange(ctx context.Context, ticker string, snap *Snapshot) error {
	var hist historicalPayload
	path := fmt.Sprintf("/historical-price-full/%s?timeseries=%d", ticker, monthTradingDays)
	if err := s.getJSON(ctx, path, &hist); err != nil {
		return fmt.Errorf("error fetching FMP historical data: %w", err)
	}
	if hist.ErrorMessage != "" {
		return fmt.Errorf("FMP API error (historical): %s", hist.ErrorMessage)
	}
	if len(hist.Historical) < monthTradingDays {
		return fmt.Errorf("not enough historical data from FMP for 1-month change calculation")
	}

	// Index 0 is the most recent trading day; index 21 is roughly one
	// month back. A recent historical close backfills a missing live
	// price before the change is computed.
	latest := hist.Historical[0].Close
	monthAgo := hist.Historical[monthTradingDays-1].Close

	if snap.Price == 0 && latest != nil {
		snap.Price = *latest
		if snap.Symbol == "" {
			snap.Symbol = strings.ToUpper(ticker)
		}
	}
	if snap.Price == 0 || monthAgo == nil || *monthAgo == 0 {
		return fmt.Errorf("could not calculate 1-month change (missing data or zero divisor)")
	}

	change := (snap.Price - *monthAgo) / *monthAgo * 100
	rounded := math.Round(change*100) / 100
	snap.MonthChangePercent = &rounded
	return nil
}

func (s *Service) getJSON(ctx context.Context, path string, out any) error {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	url := s.baseURL + path + sep + "apikey=" + s.apiKey

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
