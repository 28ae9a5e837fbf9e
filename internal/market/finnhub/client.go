// Package finnhub provides the generic quote provider used for portfolios
// without brokerage credentials. One client, keyed by a shared API token,
// serves all such users.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"portfolio_sentinel/internal/market"
	"portfolio_sentinel/internal/models"
)

const (
	DefaultBaseURL   = "https://finnhub.io/api/v1"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements market.QuoteSource against the Finnhub API.
type Client struct {
	client  *resty.Client
	limiter *rate.Limiter
	apiKey  string
}

var _ market.QuoteSource = (*Client)(nil)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL (tests point this at a local server).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.client.SetBaseURL(baseURL)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.client.SetTimeout(timeout)
	}
}

// WithRateLimit sets the request rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Finnhub client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		client: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(DefaultTimeout),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		apiKey:  apiKey,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 response from the API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("finnhub %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

type candleResponse struct {
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Status string    `json:"s"`
}

// GetPrice returns the current price from the /quote endpoint.
func (c *Client) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	q, err := c.fetchQuote(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if q.Current == 0 {
		return decimal.Zero, fmt.Errorf("no price for %s", symbol)
	}
	return decimal.NewFromFloat(q.Current), nil
}

// GetRiskQuote combines /quote with the two most recent daily candles:
// open of the newest candle is today's open, close of the one before it is
// the previous day's close.
func (c *Client) GetRiskQuote(ctx context.Context, symbol string) (*models.RiskQuote, error) {
	q, err := c.fetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if q.Current == 0 {
		return nil, fmt.Errorf("no price for %s", symbol)
	}

	candles, err := c.fetchDailyCandles(ctx, symbol, 2)
	if err != nil {
		return nil, err
	}
	if len(candles.Open) < 2 || len(candles.Close) < 2 {
		return nil, fmt.Errorf("insufficient daily candles for %s", symbol)
	}

	return &models.RiskQuote{
		Symbol:        symbol,
		LastPrice:     decimal.NewFromFloat(q.Current),
		OpenPrice:     decimal.NewFromFloat(candles.Open[1]),
		PreviousClose: decimal.NewFromFloat(candles.Close[0]),
	}, nil
}

func (c *Client) fetchQuote(ctx context.Context, symbol string) (*quoteResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"token":  c.apiKey,
		}).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, &APIError{StatusCode: resp.StatusCode(), Endpoint: "/quote", Body: resp.String()}
	}

	var q quoteResponse
	if err := json.Unmarshal(resp.Body(), &q); err != nil {
		return nil, fmt.Errorf("failed to parse quote response for %s: %w", symbol, err)
	}
	return &q, nil
}

func (c *Client) fetchDailyCandles(ctx context.Context, symbol string, count int) (*candleResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     symbol,
			"resolution": "D",
			"count":      fmt.Sprintf("%d", count),
			"token":      c.apiKey,
		}).
		Get("/stock/candle")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candles for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, &APIError{StatusCode: resp.StatusCode(), Endpoint: "/stock/candle", Body: resp.String()}
	}

	var candles candleResponse
	if err := json.Unmarshal(resp.Body(), &candles); err != nil {
		return nil, fmt.Errorf("failed to parse candle response for %s: %w", symbol, err)
	}
	if candles.Status != "" && candles.Status != "ok" {
		return nil, fmt.Errorf("candle status %q for %s", candles.Status, symbol)
	}
	return &candles, nil
}
