package pricing

import (
	"math"

	"github.com/shopspring/decimal"
	"ikirezi/pkg/domain"
)

// DiscountResult is the full output of a single discount calculation.
// Monetary fields are rounded to 2 decimals; DiscountPercent is rounded to
// the nearest whole percent.
type DiscountResult struct {
	OriginalPrice   float64 `json:"originalPrice"`
	DiscountAmount  float64 `json:"discountAmount"`
	FinalPrice      float64 `json:"finalPrice"`
	DiscountPercent int     `json:"discountPercent"`
	HasDiscount     bool    `json:"hasDiscount"`
}

// PricedItem is the minimal shape CalculateCartTotal needs per line.
type PricedItem struct {
	Price           float64 `json:"price"`
	Quantity        int     `json:"quantity"`
	DiscountPercent float64 `json:"discountPercent,omitempty"`
}

// CartTotals aggregates a priced item list.
type CartTotals struct {
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"totalDiscount"`
	Total         float64 `json:"total"`
	ItemCount     int     `json:"itemCount"`
	Savings       float64 `json:"savings"`
}

// Bulk discount tiers by quantity.
const (
	bulkTierLarge  = 10
	bulkTierMedium = 5
	bulkTierSmall  = 3

	bulkPercentLarge  = 15
	bulkPercentMedium = 10
	bulkPercentSmall  = 5
)

// CalculateDiscount derives the discounted price for a single unit.
// Invalid input never produces an error: a non-finite price degrades to an
// all-zero result, and a non-finite or non-positive percent degrades to a
// no-discount passthrough. A negative percent is treated as no discount,
// never as a price increase.
func CalculateDiscount(originalPrice, discountPercent float64) DiscountResult {
	if !isFinite(originalPrice) {
		return DiscountResult{}
	}
	if !isFinite(discountPercent) || discountPercent <= 0 {
		return DiscountResult{
			OriginalPrice: originalPrice,
			FinalPrice:    originalPrice,
		}
	}
	amount := round2(originalPrice * discountPercent / 100)
	return DiscountResult{
		OriginalPrice:   originalPrice,
		DiscountAmount:  amount,
		FinalPrice:      round2(originalPrice - amount),
		DiscountPercent: int(math.Round(discountPercent)),
		HasDiscount:     true,
	}
}

// CalculateBulkDiscount maps a quantity onto the tiered bulk percentage and
// delegates to CalculateDiscount.
func CalculateBulkDiscount(price float64, quantity int) DiscountResult {
	var percent float64
	switch {
	case quantity >= bulkTierLarge:
		percent = bulkPercentLarge
	case quantity >= bulkTierMedium:
		percent = bulkPercentMedium
	case quantity >= bulkTierSmall:
		percent = bulkPercentSmall
	}
	return CalculateDiscount(price, percent)
}

// CalculateCartTotal aggregates a list of priced items. Subtotal ignores
// discounts; TotalDiscount only counts items with a positive percent. An
// empty list returns the zero value.
func CalculateCartTotal(items []PricedItem) CartTotals {
	if len(items) == 0 {
		return CartTotals{}
	}
	var subtotal, totalDiscount float64
	var count int
	for _, item := range items {
		if !isFinite(item.Price) || item.Quantity <= 0 {
			continue
		}
		subtotal += item.Price * float64(item.Quantity)
		count += item.Quantity
		if isFinite(item.DiscountPercent) && item.DiscountPercent > 0 {
			perUnit := round2(item.Price * item.DiscountPercent / 100)
			totalDiscount += perUnit * float64(item.Quantity)
		}
	}
	subtotal = round2(subtotal)
	totalDiscount = round2(totalDiscount)
	return CartTotals{
		Subtotal:      subtotal,
		TotalDiscount: totalDiscount,
		Total:         round2(subtotal - totalDiscount),
		ItemCount:     count,
		Savings:       totalDiscount,
	}
}

// IsOnSale reports whether the book currently carries a live discount.
func IsOnSale(book domain.Book) bool {
	return isFinite(book.DiscountPercent) && book.DiscountPercent > 0
}

// EffectivePrice is the display price for a book: the live discounted price
// when on sale, else the captured discount price, else the list price.
func EffectivePrice(book domain.Book) float64 {
	if IsOnSale(book) {
		return CalculateDiscount(book.Price, book.DiscountPercent).FinalPrice
	}
	if book.DiscountPrice > 0 {
		return book.DiscountPrice
	}
	return book.Price
}

// Round2 rounds a monetary amount to 2 decimal places. The input must be
// finite; callers guard with isFinite before reaching it.
func Round2(v float64) float64 {
	return round2(v)
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
