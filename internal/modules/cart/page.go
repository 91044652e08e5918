package cart

import (
	"github.com/shopspring/decimal"

	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/products"
	"github.com/Arnau-Gelonch/zara-challenge/pkg/view"
)

// BuildPage maps a cart snapshot to the cart view model. Line indexes are the
// positions RemoveAt expects.
func BuildPage(snap Snapshot) view.CartPage {
	vm := view.CartPage{
		Items:    make([]view.CartItem, 0, len(snap.Items)),
		Currency: view.Currency,
	}

	for i, e := range snap.Items {
		p := e.Product
		line := p.BasePrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
		vm.Items = append(vm.Items, view.CartItem{
			Index:       i,
			ProductID:   p.ID,
			ProductName: p.Name,
			Brand:       p.Brand,
			ImageURL:    p.ImageURL,
			Variant:     products.VariantLabel(p),
			Qty:         e.Quantity,
			UnitPrice:   p.BasePrice,
			LineTotal:   line,

			UnitPriceLabel: view.Money(p.BasePrice),
			LineTotalLabel: view.Money(line),
		})
	}

	vm.Lines = len(vm.Items)
	vm.Count = snap.TotalItems
	vm.Total = snap.TotalPrice
	vm.TotalLabel = view.Money(snap.TotalPrice)
	return vm
}
