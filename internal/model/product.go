package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TeaCategory groups products in the catalogue.
type TeaCategory string

const (
	CategoryBlackTea       TeaCategory = "black_tea"
	CategoryGreenTea       TeaCategory = "green_tea"
	CategoryHerbalTea      TeaCategory = "herbal_tea"
	CategoryOolongTea      TeaCategory = "oolong_tea"
	CategoryWhiteTea       TeaCategory = "white_tea"
	CategorySpecialtyBlend TeaCategory = "specialty_blend"
)

// Categories lists every known tea category in display order.
var Categories = []TeaCategory{
	CategoryBlackTea,
	CategoryGreenTea,
	CategoryHerbalTea,
	CategoryOolongTea,
	CategoryWhiteTea,
	CategorySpecialtyBlend,
}

// Valid reports whether c is one of the known categories.
func (c TeaCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a tea product served by the catalogue service.
// The storefront never mutates products.
type Product struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Content        string          `json:"content,omitempty"`
	Category       TeaCategory     `json:"category"`
	Price          decimal.Decimal `json:"price"`
	ImageURL       string          `json:"image_url"`
	WeightGrams    int             `json:"weight_grams,omitempty"`
	OriginCountry  string          `json:"origin_country,omitempty"`
	InventoryCount int             `json:"inventory_count,omitempty"`
	IsAvailable    bool            `json:"is_available"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}
