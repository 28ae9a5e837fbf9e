// Package notify holds the per-user notification queues consumed over the
// HTTP boundary.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"portfolio_sentinel/internal/models"
)

// Queue is the per-user, insertion-ordered, append-only notification list.
type Queue struct {
	mu     sync.Mutex
	byUser map[string][]*models.Notification
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{byUser: make(map[string][]*models.Notification)}
}

// NewStopLoss builds a stop-loss notification. The id is time-based with a
// random tiebreaker so rapid successive alerts never collide.
func NewStopLoss(symbol string, price, stopLoss decimal.Decimal) models.Notification {
	now := time.Now()
	return models.Notification{
		ID:            fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()[:8]),
		Type:          models.NotificationStopLoss,
		Message:       fmt.Sprintf("Stock %s hit its stop loss! Price: $%s, Stop Loss: $%s", symbol, price.String(), stopLoss.String()),
		Timestamp:     now,
		Symbol:        symbol,
		Price:         price,
		StopLossPrice: stopLoss,
	}
}

// Enqueue appends a notification to the user's list, creating it if absent.
func (q *Queue) Enqueue(userID string, n models.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	stored := n
	q.byUser[userID] = append(q.byUser[userID], &stored)
}

// Unread returns the user's unread notifications in insertion order.
func (q *Queue) Unread(userID string) []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []models.Notification
	for _, n := range q.byUser[userID] {
		if !n.Read {
			out = append(out, *n)
		}
	}
	return out
}

// Acknowledge marks a notification read. Unknown users or ids are a silent
// no-op; acknowledging twice never un-reads.
func (q *Queue) Acknowledge(userID, notificationID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, n := range q.byUser[userID] {
		if n.ID == notificationID {
			n.Read = true
			return
		}
	}
}
