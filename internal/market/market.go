// Package market defines the adapter contracts over the external quote and
// execution backends.
package market

import (
	"context"

	"github.com/shopspring/decimal"

	"portfolio_sentinel/internal/models"
)

// QuoteSource is the uniform interface over the two price backends.
// Implementations never retry within a single fetch; the next scheduled
// sweep is the retry mechanism. A failed fetch returns an error to the
// caller, which logs it and moves on to the next symbol.
type QuoteSource interface {
	// GetPrice returns the latest price for a symbol.
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// GetRiskQuote returns the latest price plus today's open and the
	// previous day's close, for day-context trigger evaluation.
	GetRiskQuote(ctx context.Context, symbol string) (*models.RiskQuote, error)
}

// OrderPlacer is implemented by backends capable of real execution.
// The dispatch path type-asserts a QuoteSource to OrderPlacer to decide
// between a real and a simulated sell.
type OrderPlacer interface {
	// PlaceSellOrder submits a market sell for the full quantity,
	// good-till-cancelled.
	PlaceSellOrder(ctx context.Context, symbol string, qty decimal.Decimal) (*models.Order, error)
}
