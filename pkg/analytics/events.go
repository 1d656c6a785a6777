// Package analytics publishes storefront engagement events. Sinks are
// fire-and-forget: the cart emits events through them but never depends on
// delivery.
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the cart.
const (
	EventItemAdded      = "cart.item_added"
	EventItemRemoved    = "cart.item_removed"
	EventQuantityChange = "cart.quantity_changed"
	EventCartCleared    = "cart.cleared"
)

// Event is one storefront engagement record.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	BookID    string    `json:"bookId,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	CartTotal float64   `json:"cartTotal"`
	At        time.Time `json:"at"`
}

// NewEvent stamps an event with a fresh ID and timestamp.
func NewEvent(eventType, bookID string, quantity int, cartTotal float64) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		BookID:    bookID,
		Quantity:  quantity,
		CartTotal: cartTotal,
		At:        time.Now().UTC(),
	}
}

// Sink receives events. Implementations must tolerate being called
// concurrently; callers treat errors as advisory.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
