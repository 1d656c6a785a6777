// Package app wires the storefront's catalog, cart, and pricing into the
// operations the HTTP layer exposes.
package app

import (
	"fmt"

	"ikirezi/pkg/cart"
	"ikirezi/pkg/catalog"
	"ikirezi/pkg/domain"
	"ikirezi/pkg/pricing"
)

// Config holds the collaborators the application core needs.
type Config struct {
	Catalog catalog.Store
	Cart    *cart.Store
}

// App is the storefront application service.
type App struct {
	catalog catalog.Store
	cart    *cart.Store
}

// BookView decorates a catalog book with display pricing: the live discount
// for the detail page and the bulk tiers the storefront advertises.
type BookView struct {
	domain.Book
	OnSale         bool                     `json:"onSale"`
	EffectivePrice float64                  `json:"effectivePrice"`
	Discount       pricing.DiscountResult   `json:"discount"`
	BulkTiers      []pricing.DiscountResult `json:"bulkTiers,omitempty"`
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	if cfg.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &App{catalog: cfg.Catalog, cart: cfg.Cart}, nil
}

// ListBooks returns the browsable catalog with display pricing.
func (a *App) ListBooks() ([]BookView, error) {
	books, err := a.catalog.ListBooks()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	views := make([]BookView, 0, len(books))
	for _, b := range books {
		views = append(views, a.decorate(b, false))
	}
	return views, nil
}

// GetBook returns one book with full display pricing, including bulk tiers.
func (a *App) GetBook(id string) (BookView, error) {
	book, ok, err := a.catalog.GetBook(id)
	if err != nil {
		return BookView{}, fmt.Errorf("get book: %w", err)
	}
	if !ok {
		return BookView{}, ErrBookNotFound
	}
	return a.decorate(book, true), nil
}

func (a *App) decorate(book domain.Book, withTiers bool) BookView {
	view := BookView{
		Book:           book,
		OnSale:         pricing.IsOnSale(book),
		EffectivePrice: pricing.EffectivePrice(book),
		Discount:       pricing.CalculateDiscount(book.Price, book.DiscountPercent),
	}
	if withTiers {
		for _, qty := range []int{3, 5, 10} {
			view.BulkTiers = append(view.BulkTiers, pricing.CalculateBulkDiscount(view.EffectivePrice, qty))
		}
	}
	return view
}

// AddToCart looks the book up in the catalog, locks its effective price into
// the line item, and adds it to the cart. The snapshot means later catalog
// discount changes never reprice lines already in the cart.
func (a *App) AddToCart(bookID string, quantity int) (cart.State, error) {
	book, ok, err := a.catalog.GetBook(bookID)
	if err != nil {
		return a.cart.Snapshot(), fmt.Errorf("get book: %w", err)
	}
	if !ok {
		return a.cart.Snapshot(), ErrBookNotFound
	}
	if pricing.IsOnSale(book) && book.DiscountPrice == 0 {
		book.DiscountPrice = pricing.CalculateDiscount(book.Price, book.DiscountPercent).FinalPrice
	}
	return a.cart.AddToCart(book, quantity), nil
}

// RemoveFromCart deletes a line; unknown ids no-op.
func (a *App) RemoveFromCart(id string) cart.State {
	return a.cart.RemoveFromCart(id)
}

// UpdateQuantity sets an absolute quantity; requests below 1 no-op.
func (a *App) UpdateQuantity(id string, quantity int) cart.State {
	return a.cart.UpdateQuantity(id, quantity)
}

// ClearCart empties the cart.
func (a *App) ClearCart() cart.State {
	return a.cart.ClearCart()
}

// Cart returns the current cart state.
func (a *App) Cart() cart.State {
	return a.cart.Snapshot()
}

// CartTotal recomputes the cart summary on demand.
func (a *App) CartTotal() cart.Totals {
	return a.cart.GetCartTotal()
}

// IsInCart reports whether a book is in the cart.
func (a *App) IsInCart(id string) bool {
	return a.cart.IsInCart(id)
}

// ItemQuantity returns the carted quantity for a book, 0 when absent.
func (a *App) ItemQuantity(id string) int {
	return a.cart.GetItemQuantity(id)
}
