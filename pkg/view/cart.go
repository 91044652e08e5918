package view

import "github.com/shopspring/decimal"

type CartItem struct {
	Index       int             `json:"index"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Brand       string          `json:"brand"`
	ImageURL    string          `json:"imageUrl"`
	Variant     string          `json:"variant,omitempty"`
	Qty         int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`

	UnitPriceLabel string `json:"unitPriceLabel"`
	LineTotalLabel string `json:"lineTotalLabel"`
}

type CartPage struct {
	Items      []CartItem      `json:"items"`
	Lines      int             `json:"lines"`
	Count      int             `json:"totalItems"`
	Total      decimal.Decimal `json:"totalPrice"`
	TotalLabel string          `json:"totalPriceLabel"`
	Currency   string          `json:"currency"`
}
