package catalog

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"ikirezi/pkg/domain"
)

// BookModel is the GORM shape of a catalog book. Metadata keeps the opaque
// passthrough fields (series, format, badges, ...) the storefront renders
// but never interprets.
type BookModel struct {
	ID              string  `gorm:"primaryKey"`
	Title           string  `gorm:"not null"`
	Author          string  `gorm:"not null;index"`
	CoverURL        string
	Price           float64 `gorm:"not null"`
	DiscountPercent float64
	DiscountPrice   float64
	Stock           int
	Metadata        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"not null;index"`
	UpdatedAt       time.Time      `gorm:"not null"`
}

func bookToModel(b domain.Book) BookModel {
	var meta datatypes.JSON
	if len(b.Metadata) > 0 {
		if raw, err := json.Marshal(b.Metadata); err == nil {
			meta = datatypes.JSON(raw)
		}
	}
	return BookModel{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		CoverURL:        b.CoverURL,
		Price:           b.Price,
		DiscountPercent: b.DiscountPercent,
		DiscountPrice:   b.DiscountPrice,
		Stock:           b.Stock,
		Metadata:        meta,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func bookFromModel(m BookModel) domain.Book {
	var meta map[string]any
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
	}
	return domain.Book{
		ID:              m.ID,
		Title:           m.Title,
		Author:          m.Author,
		CoverURL:        m.CoverURL,
		Price:           m.Price,
		DiscountPercent: m.DiscountPercent,
		DiscountPrice:   m.DiscountPrice,
		Stock:           m.Stock,
		Metadata:        meta,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
