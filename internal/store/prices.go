package store

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_sentinel/internal/models"
)

// PriceTracker keeps the rolling per-(user, symbol) price snapshots used
// for change detection and day-boundary resets. Entries are overwritten by
// every successful fetch and never explicitly deleted; a snapshot for a
// symbol no longer in the portfolio persists harmlessly until overwritten.
type PriceTracker struct {
	mu        sync.RWMutex
	snapshots map[string]map[string]models.PriceSnapshot
}

// NewPriceTracker creates an empty tracker.
func NewPriceTracker() *PriceTracker {
	return &PriceTracker{snapshots: make(map[string]map[string]models.PriceSnapshot)}
}

// Lookup returns the snapshot for a (user, symbol), if one exists.
func (t *PriceTracker) Lookup(userID, symbol string) (models.PriceSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, ok := t.snapshots[userID][symbol]
	return snap, ok
}

// Store overwrites the full snapshot for a (user, symbol).
func (t *PriceTracker) Store(userID, symbol string, snap models.PriceSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bySymbol, ok := t.snapshots[userID]
	if !ok {
		bySymbol = make(map[string]models.PriceSnapshot)
		t.snapshots[userID] = bySymbol
	}
	bySymbol[symbol] = snap
}

// RecordPrice updates price and observation time while preserving any
// day-scoped open/previous-close already held for the symbol.
func (t *PriceTracker) RecordPrice(userID, symbol string, price decimal.Decimal, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bySymbol, ok := t.snapshots[userID]
	if !ok {
		bySymbol = make(map[string]models.PriceSnapshot)
		t.snapshots[userID] = bySymbol
	}
	snap := bySymbol[symbol]
	snap.Price = price
	snap.Time = at
	bySymbol[symbol] = snap
}

// HasAny reports whether the user has at least one snapshot recorded.
func (t *PriceTracker) HasAny(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.snapshots[userID]) > 0
}
