package products

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NoColor marks an absent color selection.
const NoColor = -1

// Selection is the variant picked on the product page.
type Selection struct {
	Storage string
	Color   int
}

// ResolvePrice returns the price of the storage option whose capacity equals
// storage, or the base price when nothing matches.
func ResolvePrice(p Product, storage string) decimal.Decimal {
	if storage == "" {
		return p.BasePrice
	}
	for _, opt := range p.StorageOptions {
		if opt.Capacity == storage {
			return opt.Price
		}
	}
	return p.BasePrice
}

// ResolveImage returns the image of the color at index color, or the primary
// image when the index is out of range.
func ResolveImage(p Product, color int) string {
	if color >= 0 && color < len(p.ColorOptions) {
		return p.ColorOptions[color].ImageURL
	}
	return p.ImageURL
}

// SelectionErrors reports which variant axes still need a valid choice before
// the product can go into the cart. Nil means the selection is complete.
func SelectionErrors(p Product, sel Selection) map[string]string {
	var out map[string]string
	if len(p.StorageOptions) > 0 && !hasStorage(p, sel.Storage) {
		out = map[string]string{"storage": "Select a storage option."}
	}
	if len(p.ColorOptions) > 0 && (sel.Color < 0 || sel.Color >= len(p.ColorOptions)) {
		if out == nil {
			out = map[string]string{}
		}
		out["color"] = "Select a color."
	}
	return out
}

// CanAddToCart reports whether sel is complete for p.
func CanAddToCart(p Product, sel Selection) bool {
	return len(SelectionErrors(p, sel)) == 0
}

// Snapshot is the product value committed to the cart: the resolved price
// replaces the base price, the resolved image replaces the primary image, and
// the option lists are narrowed to the chosen variant when one matched.
func Snapshot(p Product, sel Selection) Product {
	out := p.Clone()
	out.BasePrice = ResolvePrice(p, sel.Storage)
	out.ImageURL = ResolveImage(p, sel.Color)
	for _, opt := range p.StorageOptions {
		if opt.Capacity == sel.Storage {
			out.StorageOptions = []StorageOption{opt}
			break
		}
	}
	if sel.Color >= 0 && sel.Color < len(p.ColorOptions) {
		out.ColorOptions = []ColorOption{p.ColorOptions[sel.Color]}
	}
	return out
}

// VariantLabel is the "<storage> | <color>" caption shown on cart lines. It
// reads the first option of each axis, which for a snapshot is the chosen one.
func VariantLabel(p Product) string {
	storage := p.RAM
	if len(p.StorageOptions) > 0 {
		storage = p.StorageOptions[0].Capacity
	}
	color := ""
	if len(p.ColorOptions) > 0 {
		color = p.ColorOptions[0].Name
	}
	parts := make([]string, 0, 2)
	if storage != "" {
		parts = append(parts, storage)
	}
	if color != "" {
		parts = append(parts, color)
	}
	return strings.Join(parts, " | ")
}

func hasStorage(p Product, capacity string) bool {
	for _, opt := range p.StorageOptions {
		if opt.Capacity == capacity {
			return true
		}
	}
	return false
}
