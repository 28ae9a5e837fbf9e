// Package alpaca adapts the Alpaca brokerage API to the market interfaces.
// Each provider instance carries one user's credentials.
package alpaca

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"portfolio_sentinel/internal/market"
	"portfolio_sentinel/internal/models"
)

// Provider implements market.QuoteSource and market.OrderPlacer against
// Alpaca, using per-user API credentials rather than process-wide ones.
type Provider struct {
	mdClient    *marketdata.Client
	tradeClient *alpaca.Client
}

var _ market.QuoteSource = (*Provider)(nil)
var _ market.OrderPlacer = (*Provider)(nil)

// NewProvider returns a provider bound to one user's key pair.
func NewProvider(key, secret string) *Provider {
	return &Provider{
		mdClient: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    key,
			APISecret: secret,
		}),
		tradeClient: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    key,
			APISecret: secret,
		}),
	}
}

// GetPrice returns the latest quoted ask price.
func (p *Provider) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	q, err := p.mdClient.GetLatestQuote(symbol, marketdata.GetLatestQuoteRequest{})
	if err != nil {
		return decimal.Zero, err
	}
	if q == nil {
		return decimal.Zero, fmt.Errorf("no quote found for %s", symbol)
	}
	return decimal.NewFromFloat(q.AskPrice), nil
}

// GetRiskQuote combines the latest quote with the two most recent daily
// bars: the newest bar supplies today's open, the one before it yesterday's
// close.
func (p *Provider) GetRiskQuote(ctx context.Context, symbol string) (*models.RiskQuote, error) {
	q, err := p.mdClient.GetLatestQuote(symbol, marketdata.GetLatestQuoteRequest{})
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("no quote found for %s", symbol)
	}

	start := time.Now().AddDate(0, 0, -5)
	bars, err := p.mdClient.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
	})
	if err != nil {
		return nil, err
	}
	if len(bars) < 2 {
		return nil, fmt.Errorf("insufficient daily bars for %s: got %d", symbol, len(bars))
	}

	todayBar := bars[len(bars)-1]
	yesterdayBar := bars[len(bars)-2]

	return &models.RiskQuote{
		Symbol:        symbol,
		LastPrice:     decimal.NewFromFloat(q.AskPrice),
		OpenPrice:     decimal.NewFromFloat(todayBar.Open),
		PreviousClose: decimal.NewFromFloat(yesterdayBar.Close),
	}, nil
}

// PlaceSellOrder submits a market sell for the full quantity, GTC.
func (p *Provider) PlaceSellOrder(ctx context.Context, symbol string, qty decimal.Decimal) (*models.Order, error) {
	o, err := p.tradeClient.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      symbol,
		Qty:         &qty,
		Side:        alpaca.Sell,
		Type:        alpaca.Market,
		TimeInForce: alpaca.GTC,
	})
	if err != nil {
		return nil, err
	}
	return mapOrder(o), nil
}

func mapOrder(o *alpaca.Order) *models.Order {
	if o == nil {
		return nil
	}

	qty := decimal.Zero
	if o.Qty != nil {
		qty = *o.Qty
	}

	return &models.Order{
		ID:          o.ID,
		Symbol:      o.Symbol,
		Qty:         qty,
		Side:        string(o.Side),
		Type:        string(o.Type),
		TimeInForce: string(o.TimeInForce),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
}
