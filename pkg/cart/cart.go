// Package cart implements the storefront shopping cart: a pure state
// transition function over line items, a store object that owns the current
// state, and pluggable durable storage for surviving restarts.
package cart

import (
	"ikirezi/pkg/domain"
	"ikirezi/pkg/pricing"
)

// defaultStockCeiling caps quantities for items whose stock is unknown.
const defaultStockCeiling = 99

// State is the full cart aggregate. Total and ItemCount are always derived
// from Items, never patched incrementally, so they cannot drift.
type State struct {
	Items     []domain.LineItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
}

// Totals is the on-demand summary selector result.
type Totals struct {
	ItemCount int     `json:"itemCount"`
	Total     float64 `json:"total"`
}

// Action is the tagged union of cart transitions consumed by Reduce.
type Action interface {
	isAction()
}

// AddItem merges quantity into an existing line or inserts a new one,
// clamped to the book's stock ceiling.
type AddItem struct {
	Book     domain.Book
	Quantity int
}

// RemoveItem deletes the line with the given book ID; unknown IDs no-op.
type RemoveItem struct {
	ID string
}

// UpdateQuantity sets an absolute quantity for a line. Quantities below 1
// are silently ignored; valid quantities are clamped to the stock ceiling.
type UpdateQuantity struct {
	ID       string
	Quantity int
}

// ClearCart resets to the empty cart.
type ClearCart struct{}

// LoadItems replaces the item list wholesale, recomputing totals from
// scratch. Persisted totals are never trusted.
type LoadItems struct {
	Items []domain.LineItem
}

func (AddItem) isAction()        {}
func (RemoveItem) isAction()     {}
func (UpdateQuantity) isAction() {}
func (ClearCart) isAction()      {}
func (LoadItems) isAction()      {}

// Reduce applies one action to a state and returns the successor state.
// It is pure: the input state and its item slice are never mutated.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddItem:
		qty := a.Quantity
		if qty < 1 {
			qty = 1
		}
		ceiling := stockCeiling(a.Book.Stock)
		items := cloneItems(state.Items)
		merged := false
		for i := range items {
			if items[i].ID == a.Book.ID {
				items[i].Quantity = clamp(items[i].Quantity+qty, ceiling)
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, domain.LineItem{Book: a.Book, Quantity: clamp(qty, ceiling)})
		}
		return derive(items)

	case RemoveItem:
		items := make([]domain.LineItem, 0, len(state.Items))
		for _, item := range state.Items {
			if item.ID != a.ID {
				items = append(items, item)
			}
		}
		return derive(items)

	case UpdateQuantity:
		if a.Quantity < 1 {
			return state
		}
		items := cloneItems(state.Items)
		for i := range items {
			if items[i].ID == a.ID {
				items[i].Quantity = clamp(a.Quantity, stockCeiling(items[i].Stock))
			}
		}
		return derive(dropEmpty(items))

	case ClearCart:
		return State{Items: []domain.LineItem{}}

	case LoadItems:
		items := cloneItems(a.Items)
		if items == nil {
			items = []domain.LineItem{}
		}
		return derive(dropEmpty(items))

	default:
		return state
	}
}

// derive rebuilds the aggregate from an item list. The total uses each
// line's effective price (captured discount price over list price).
func derive(items []domain.LineItem) State {
	var total float64
	var count int
	for _, item := range items {
		total += item.EffectivePrice() * float64(item.Quantity)
		count += item.Quantity
	}
	return State{
		Items:     items,
		Total:     pricing.Round2(total),
		ItemCount: count,
	}
}

func stockCeiling(stock int) int {
	if stock > 0 {
		return stock
	}
	return defaultStockCeiling
}

func clamp(qty, ceiling int) int {
	if qty > ceiling {
		return ceiling
	}
	return qty
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	if items == nil {
		return nil
	}
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}

// dropEmpty filters lines whose quantity fell to zero or below. The update
// guard should make this unreachable; it stays as part of the contract.
func dropEmpty(items []domain.LineItem) []domain.LineItem {
	out := items[:0]
	for _, item := range items {
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}
