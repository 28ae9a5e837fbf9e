// Package store owns the process-wide mutable state: user portfolios and
// observed price snapshots. Both are explicit synchronized objects injected
// into the watcher and the HTTP layer; nothing here persists across
// restarts.
package store

import (
	"sync"

	"portfolio_sentinel/internal/models"
)

// PortfolioStore maps user ids to portfolio entries. Each entry carries its
// own lock so sweeps over different users never contend, and so a portfolio
// submission mid-sweep replaces the entry atomically for that user.
type PortfolioStore struct {
	mu    sync.RWMutex
	users map[string]*Entry
}

// NewPortfolioStore creates an empty store.
func NewPortfolioStore() *PortfolioStore {
	return &PortfolioStore{users: make(map[string]*Entry)}
}

// Replace installs a user's portfolio wholesale, creating the entry if
// absent. A prior portfolio for the user is discarded, never merged.
func (s *PortfolioStore) Replace(userID string, p models.Portfolio) {
	s.mu.Lock()
	entry, ok := s.users[userID]
	if !ok {
		entry = &Entry{userID: userID}
		s.users[userID] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	entry.portfolio = p
	entry.mu.Unlock()
}

// Get returns the entry for a user, if one exists.
func (s *PortfolioStore) Get(userID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.users[userID]
	return entry, ok
}

// UserIDs returns a point-in-time snapshot of known users, for sweep
// iteration.
func (s *PortfolioStore) UserIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids
}

// Entry is one user's portfolio plus its lock. Sweeps read position copies,
// do their network fetches unlocked, then come back through MarkSold to
// claim a trigger.
type Entry struct {
	mu        sync.Mutex
	userID    string
	portfolio models.Portfolio
}

// UserID returns the owning user id.
func (e *Entry) UserID() string {
	return e.userID
}

// Backend returns the entry's execution backend (nil for quote-only).
func (e *Entry) Backend() *models.ExecutionBackend {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.portfolio.Backend
}

// OpenPositions returns copies of the positions not yet sold.
func (e *Entry) OpenPositions() []models.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Position, 0, len(e.portfolio.Positions))
	for _, p := range e.portfolio.Positions {
		if p.Sold {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// Positions returns copies of every position, sold or not, keyed by symbol.
func (e *Entry) Positions() map[string]models.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]models.Position, len(e.portfolio.Positions))
	for sym, p := range e.portfolio.Positions {
		out[sym] = *p
	}
	return out
}

// MarkSold flips the position's sold flag and reports whether this call did
// the flip. The check-and-set runs under the entry lock, so concurrent
// sweeps evaluating the same position race here and exactly one wins;
// the loser takes no action. Returns false for unknown symbols, which
// happens when a portfolio was replaced between fetch and claim.
func (e *Entry) MarkSold(symbol string) (models.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.portfolio.Positions[symbol]
	if !ok || p.Sold {
		return models.Position{}, false
	}
	p.Sold = true
	return *p, true
}
