package domain

import "time"

// Book is a catalog entry as the storefront sees it. Price fields are unit
// amounts in the store currency; DiscountPrice and Stock use zero to mean
// "not set".
type Book struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Author          string         `json:"author"`
	CoverURL        string         `json:"coverUrl,omitempty"`
	Price           float64        `json:"price"`
	DiscountPercent float64        `json:"discountPercent,omitempty"`
	DiscountPrice   float64        `json:"discountPrice,omitempty"`
	Stock           int            `json:"stock,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// LineItem is one catalog item plus the quantity of it currently in the cart.
// The embedded Book is a snapshot taken at add time; catalog changes after
// that never reprice the line.
type LineItem struct {
	Book
	Quantity int `json:"quantity"`
}

// EffectivePrice is the unit price actually charged: the discounted price
// when one was captured, else the list price.
func (li LineItem) EffectivePrice() float64 {
	if li.DiscountPrice > 0 {
		return li.DiscountPrice
	}
	return li.Price
}
