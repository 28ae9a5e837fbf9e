package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BackendKind selects how a user's portfolio is priced and executed.
type BackendKind string

const (
	// BackendBrokerage trades and quotes through the brokerage API using
	// the user's own credentials.
	BackendBrokerage BackendKind = "brokerage"
	// BackendQuoteOnly has no execution capability; prices come from the
	// shared quote provider and sells are simulated.
	BackendQuoteOnly BackendKind = "quote_only"
)

// ExecutionBackend is the tagged variant behind per-user backend selection.
// A nil *ExecutionBackend means quote-only.
type ExecutionBackend struct {
	Kind   BackendKind `json:"kind"`
	Key    string      `json:"key,omitempty"`
	Secret string      `json:"secret,omitempty"`
}

// IsBrokerage reports whether real order execution is available.
func (b *ExecutionBackend) IsBrokerage() bool {
	return b != nil && b.Kind == BackendBrokerage
}

// Position is a single monitored holding.
//
// Sold is monotonic: once true, the position is excluded from every sweep
// for its lifetime. It is flipped only by the dispatch path, under the
// owning portfolio entry's lock.
type Position struct {
	Symbol   string          `json:"symbol"`
	StopLoss decimal.Decimal `json:"stopLoss"`
	Quantity decimal.Decimal `json:"quantity"`
	Sold     bool            `json:"sold"`
}

// Portfolio is one user's full holding set plus backend selection.
// Submissions replace it wholesale; it is never partially merged.
type Portfolio struct {
	UserID    string               `json:"userId"`
	Positions map[string]*Position `json:"stocks"`
	Backend   *ExecutionBackend    `json:"backend,omitempty"`
}

// PriceSnapshot is the last observed quote state for one (user, symbol).
//
// OpenPrice and PreviousClose are day-scoped: they are only meaningful while
// Time falls on the same calendar day as "now". Crossing a day boundary
// invalidates them and the next fetch re-seeds.
type PriceSnapshot struct {
	Price         decimal.Decimal
	OpenPrice     decimal.Decimal
	PreviousClose decimal.Decimal
	Time          time.Time
}

// HasDayContext reports whether the snapshot carries usable open and
// previous-close values for intraday/gap evaluation.
func (s PriceSnapshot) HasDayContext() bool {
	return !s.OpenPrice.IsZero() && !s.PreviousClose.IsZero()
}

// SameCalendarDay compares year/month/day, ignoring clock time.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RiskQuote is the day-context quote used by the volatility sweep.
type RiskQuote struct {
	Symbol        string
	LastPrice     decimal.Decimal
	OpenPrice     decimal.Decimal
	PreviousClose decimal.Decimal
}

// Order mirrors the broker's view of a submitted order, reduced to the
// fields the engine logs.
type Order struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	Qty         decimal.Decimal `json:"qty"`
	Side        string          `json:"side"`
	Type        string          `json:"type"`
	TimeInForce string          `json:"time_in_force"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NotificationStopLoss is the type tag carried by stop-loss alerts.
const NotificationStopLoss = "stop_loss"

// Notification is a user-facing alert. Immutable once created except for
// the Read flag.
type Notification struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Message       string          `json:"message"`
	Timestamp     time.Time       `json:"timestamp"`
	Symbol        string          `json:"stockTicker"`
	Price         decimal.Decimal `json:"price"`
	StopLossPrice decimal.Decimal `json:"stopLossPrice"`
	Read          bool            `json:"read"`
}
