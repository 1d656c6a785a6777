package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ikirezi/pkg/analytics"
	"ikirezi/pkg/domain"
)

// Store owns the live cart state. It is constructed once at application
// start and injected into consumers; there is no package-level instance.
//
// Mutations run the pure reducer, then persist the item list best-effort and
// emit an analytics event fire-and-forget. Neither side effect can fail a
// mutation: the cart always presents a valid state.
type Store struct {
	mu      sync.RWMutex
	state   State
	storage Storage
	sink    analytics.Sink

	// effectMu serializes persists and event publishes in the order their
	// mutations were applied, without holding mu across slow I/O.
	effectMu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithSink attaches a fire-and-forget analytics sink.
func WithSink(sink analytics.Sink) Option {
	return func(s *Store) {
		s.sink = sink
	}
}

// New builds a store over the given storage and immediately loads any
// previously persisted item list. A corrupted document is discarded (and
// cleared from storage) rather than surfaced: the cart falls back to empty.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		state:   State{Items: []domain.LineItem{}},
		storage: storage,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.loadPersisted()
	return s
}

func (s *Store) loadPersisted() {
	if s.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, ok, err := s.storage.Load(ctx)
	if err != nil {
		slog.Warn("cart load failed, starting empty", "err", err)
		return
	}
	if !ok {
		return
	}
	var doc persistedCart
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("discarding corrupted cart document", "err", err)
		if clearErr := s.storage.Clear(ctx); clearErr != nil {
			slog.Warn("clear corrupted cart document failed", "err", clearErr)
		}
		return
	}
	s.state = Reduce(s.state, LoadItems{Items: doc.Items})
}

// dispatch applies an action, persists the result, and emits an event.
func (s *Store) dispatch(action Action, event func(State) analytics.Event) State {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	next := s.state
	// effectMu must be taken before mu is released: a later mutation could
	// otherwise persist first and then be overwritten by this older state.
	s.effectMu.Lock()
	s.mu.Unlock()
	defer s.effectMu.Unlock()

	s.persist(next)
	if s.sink != nil && event != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.sink.Publish(ctx, event(next)); err != nil {
			slog.Warn("cart analytics publish failed", "err", err)
		}
	}
	return next
}

// persist writes the item list (only the items, never totals) back to
// storage. Failures are logged and swallowed: persistence is best-effort.
func (s *Store) persist(state State) {
	if s.storage == nil {
		return
	}
	data, err := json.Marshal(persistedCart{Items: state.Items})
	if err != nil {
		slog.Warn("cart encode failed", "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.storage.Save(ctx, data); err != nil {
		slog.Warn("cart persist failed", "err", err)
	}
}

// AddToCart adds quantity units of a book, merging with an existing line and
// clamping to the book's stock ceiling. Quantity below 1 defaults to 1.
func (s *Store) AddToCart(book domain.Book, quantity int) State {
	if quantity < 1 {
		quantity = 1
	}
	return s.dispatch(AddItem{Book: book, Quantity: quantity}, func(next State) analytics.Event {
		return analytics.NewEvent(analytics.EventItemAdded, book.ID, quantity, next.Total)
	})
}

// RemoveFromCart deletes the line with the given id; unknown ids no-op.
func (s *Store) RemoveFromCart(id string) State {
	return s.dispatch(RemoveItem{ID: id}, func(next State) analytics.Event {
		return analytics.NewEvent(analytics.EventItemRemoved, id, 0, next.Total)
	})
}

// UpdateQuantity sets an absolute quantity for a line. Requests below 1 are
// silently ignored.
func (s *Store) UpdateQuantity(id string, quantity int) State {
	if quantity < 1 {
		return s.Snapshot()
	}
	return s.dispatch(UpdateQuantity{ID: id, Quantity: quantity}, func(next State) analytics.Event {
		return analytics.NewEvent(analytics.EventQuantityChange, id, quantity, next.Total)
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart() State {
	return s.dispatch(ClearCart{}, func(next State) analytics.Event {
		return analytics.NewEvent(analytics.EventCartCleared, "", 0, 0)
	})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Items:     cloneItems(s.state.Items),
		Total:     s.state.Total,
		ItemCount: s.state.ItemCount,
	}
}

// Items returns a copy of the current line items.
func (s *Store) Items() []domain.LineItem {
	return s.Snapshot().Items
}

// Total returns the current derived total.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Total
}

// ItemCount returns the current derived quantity sum.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ItemCount
}

// IsInCart reports whether a line with the given id exists.
func (s *Store) IsInCart(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.state.Items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// GetItemQuantity returns the quantity for a line, or 0 when absent.
func (s *Store) GetItemQuantity(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.state.Items {
		if item.ID == id {
			return item.Quantity
		}
	}
	return 0
}

// GetCartTotal recomputes the summary from the item list on demand, through
// the same derivation the reducer uses for the stored aggregate.
func (s *Store) GetCartTotal() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	derived := derive(s.state.Items)
	return Totals{ItemCount: derived.ItemCount, Total: derived.Total}
}
