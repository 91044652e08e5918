package products

import "github.com/shopspring/decimal"

// Process-wide; see the package doc.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a read-only catalog snapshot.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model,omitempty"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description,omitempty"`
	RAM         string          `json:"ram,omitempty"`
	Processor   string          `json:"processor,omitempty"`
	Screen      string          `json:"screen,omitempty"`
	Rating      *float64        `json:"rating,omitempty"`

	Specs           *Specs           `json:"specs,omitempty"`
	ColorOptions    []ColorOption    `json:"colorOptions,omitempty"`
	StorageOptions  []StorageOption  `json:"storageOptions,omitempty"`
	SimilarProducts []SimilarProduct `json:"similarProducts,omitempty"`
}

type Specs struct {
	Screen            string `json:"screen,omitempty"`
	Resolution        string `json:"resolution,omitempty"`
	Processor         string `json:"processor,omitempty"`
	MainCamera        string `json:"mainCamera,omitempty"`
	SelfieCamera      string `json:"selfieCamera,omitempty"`
	Battery           string `json:"battery,omitempty"`
	OS                string `json:"os,omitempty"`
	ScreenRefreshRate string `json:"screenRefreshRate,omitempty"`
}

type ColorOption struct {
	Name     string `json:"name"`
	HexCode  string `json:"hexCode"`
	ImageURL string `json:"imageUrl"`
}

type StorageOption struct {
	Capacity string          `json:"capacity"`
	Price    decimal.Decimal `json:"price"`
}

type SimilarProduct struct {
	ID        string          `json:"id"`
	Brand     string          `json:"brand"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"basePrice"`
	ImageURL  string          `json:"imageUrl"`
}

// Clone returns a deep copy; the cart keeps clones so later changes to the
// source value never leak into stored entries.
func (p Product) Clone() Product {
	out := p
	if p.Rating != nil {
		r := *p.Rating
		out.Rating = &r
	}
	if p.Specs != nil {
		s := *p.Specs
		out.Specs = &s
	}
	if p.ColorOptions != nil {
		out.ColorOptions = append([]ColorOption(nil), p.ColorOptions...)
	}
	if p.StorageOptions != nil {
		out.StorageOptions = append([]StorageOption(nil), p.StorageOptions...)
	}
	if p.SimilarProducts != nil {
		out.SimilarProducts = append([]SimilarProduct(nil), p.SimilarProducts...)
	}
	return out
}
