package view

import (
	"github.com/shopspring/decimal"

	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/products"
)

type StorageChoice struct {
	Capacity string          `json:"capacity"`
	Price    decimal.Decimal `json:"price"`
	Selected bool            `json:"selected"`
}

type ColorChoice struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	HexCode  string `json:"hexCode"`
	Selected bool   `json:"selected"`
}

// ProductDetailPage is the product page with the current variant selection
// already resolved to a price and an image.
type ProductDetailPage struct {
	Product      products.Product `json:"product"`
	Price        decimal.Decimal  `json:"price"`
	PriceLabel   string           `json:"priceLabel"`
	ImageURL     string           `json:"imageUrl"`
	Storage      []StorageChoice  `json:"storageOptions"`
	Colors       []ColorChoice    `json:"colorOptions"`
	CanAddToCart bool             `json:"canAddToCart"`
	Missing      []string         `json:"missing,omitempty"`
}
