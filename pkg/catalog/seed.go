package catalog

import (
	"fmt"
	"time"

	"ikirezi/pkg/domain"
)

// Seed fills a store with the demo inventory the storefront ships with.
// Existing records with the same IDs are overwritten.
func Seed(store Store) error {
	now := time.Now().UTC()
	books := []domain.Book{
		{
			ID:              "bk-001",
			Title:           "The Name of the Wind",
			Author:          "Patrick Rothfuss",
			Price:           24.99,
			DiscountPercent: 20,
			Stock:           12,
			Metadata:        map[string]any{"genre": "fantasy", "badge": "bestseller"},
		},
		{
			ID:       "bk-002",
			Title:    "Project Hail Mary",
			Author:   "Andy Weir",
			Price:    28.5,
			Stock:    8,
			Metadata: map[string]any{"genre": "sci-fi"},
		},
		{
			ID:              "bk-003",
			Title:           "Kafka on the Shore",
			Author:          "Haruki Murakami",
			Price:           18.0,
			DiscountPercent: 10,
			Stock:           5,
			Metadata:        map[string]any{"genre": "literary"},
		},
		{
			ID:     "bk-004",
			Title:  "The Pragmatic Programmer",
			Author: "David Thomas, Andrew Hunt",
			Price:  49.95,
			Stock:  3,
		},
		{
			ID:     "bk-005",
			Title:  "Piranesi",
			Author: "Susanna Clarke",
			Price:  16.25,
		},
	}
	for _, b := range books {
		b.CreatedAt = now
		b.UpdatedAt = now
		if err := store.SaveBook(b); err != nil {
			return fmt.Errorf("seed book %s: %w", b.ID, err)
		}
	}
	return nil
}
