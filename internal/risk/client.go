// Package risk delivers recalculation signals to the external risk service.
// Deliveries are fire-and-forget from the sweep's perspective: a failure is
// reported in the Result and never interrupts the sweep or touches position
// state.
package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const DefaultTimeout = 10 * time.Second

// Result is the structured outcome of one signal delivery.
type Result struct {
	Delivered bool
	Reason    string // failure reason when not delivered
}

func delivered() Result {
	return Result{Delivered: true}
}

func failed(reason string) Result {
	return Result{Reason: reason}
}

// Sender is the interface the sweeps depend on; satisfied by *Client and by
// test spies.
type Sender interface {
	Send(ctx context.Context, userID, symbol, reason string, currentPrice decimal.Decimal) Result
}

// Client posts signals to the risk-recalculation endpoint with bearer auth.
type Client struct {
	client *resty.Client
	url    string
}

var _ Sender = (*Client)(nil)

// NewClient creates a risk client for the given endpoint and API key.
func NewClient(url, apiKey string) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(DefaultTimeout).
			SetAuthToken(apiKey),
		url: url,
	}
}

type signalPayload struct {
	UserID       string          `json:"userId"`
	Symbol       string          `json:"symbol"`
	Reason       string          `json:"reason"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
}

// Send delivers one recalculation signal. The response body is not needed
// for correctness; only the status matters.
func (c *Client) Send(ctx context.Context, userID, symbol, reason string, currentPrice decimal.Decimal) Result {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(signalPayload{
			UserID:       userID,
			Symbol:       symbol,
			Reason:       reason,
			CurrentPrice: currentPrice,
		}).
		Post(c.url)
	if err != nil {
		return failed(err.Error())
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return failed(fmt.Sprintf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	return delivered()
}
