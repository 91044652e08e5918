package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Arnau-Gelonch/zara-challenge/internal/http/middleware"
	"github.com/Arnau-Gelonch/zara-challenge/internal/http/validation"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/products"
	"github.com/Arnau-Gelonch/zara-challenge/internal/shared/apperr"
	"github.com/Arnau-Gelonch/zara-challenge/pkg/view"
)

// ProductsHandler serves the listing, the product page and prefetch.
type ProductsHandler struct {
	repo  products.Repository
	cache *products.Cache
}

func NewProductsHandler(repo products.Repository, cache *products.Cache) *ProductsHandler {
	return &ProductsHandler{repo: repo, cache: cache}
}

type listQuery struct {
	Search string `form:"search" json:"search"`
	Limit  int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" json:"offset" binding:"omitempty,min=0"`
}

type detailQuery struct {
	Storage string `form:"storage" json:"storage"`
	Color   *int   `form:"color" json:"color"`
}

// List handles GET /api/products
func (h *ProductsHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid search parameters.", validation.FromBindError(err, &q)))
		return
	}

	res, err := h.repo.List(c.Request.Context(), products.Query{
		Search: strings.TrimSpace(q.Search),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		middleware.Fail(c, catalogErr(err, "Error loading products. Please try again."))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Show handles GET /api/products/:id?storage=&color=
func (h *ProductsHandler) Show(c *gin.Context) {
	var q detailQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid variant selection.", validation.FromBindError(err, &q)))
		return
	}

	p, err := h.product(c, c.Param("id"))
	if err != nil {
		middleware.Fail(c, catalogErr(err, "Error loading product details. Please try again."))
		return
	}

	sel := products.Selection{Storage: q.Storage, Color: products.NoColor}
	if q.Color != nil {
		sel.Color = *q.Color
	}
	c.JSON(http.StatusOK, mapProductForDetail(p, sel))
}

// Prefetch handles POST /api/products/:id/prefetch
func (h *ProductsHandler) Prefetch(c *gin.Context) {
	if h.cache == nil {
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.cache.Prefetch(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Fail(c, catalogErr(err, "Error loading product details. Please try again."))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductsHandler) product(c *gin.Context, id string) (products.Product, error) {
	if h.cache != nil {
		return h.cache.Get(c.Request.Context(), id)
	}
	return h.repo.Get(c.Request.Context(), id)
}

func mapProductForDetail(p products.Product, sel products.Selection) view.ProductDetailPage {
	price := products.ResolvePrice(p, sel.Storage)

	storage := make([]view.StorageChoice, 0, len(p.StorageOptions))
	for _, opt := range p.StorageOptions {
		storage = append(storage, view.StorageChoice{
			Capacity: opt.Capacity,
			Price:    opt.Price,
			Selected: opt.Capacity == sel.Storage,
		})
	}

	colors := make([]view.ColorChoice, 0, len(p.ColorOptions))
	for i, opt := range p.ColorOptions {
		colors = append(colors, view.ColorChoice{
			Index:    i,
			Name:     opt.Name,
			HexCode:  opt.HexCode,
			Selected: i == sel.Color,
		})
	}

	missing := []string{}
	for field := range products.SelectionErrors(p, sel) {
		missing = append(missing, field)
	}
	// map order is random; keep storage before color like the page does
	if len(missing) == 2 {
		missing = []string{"storage", "color"}
	}

	return view.ProductDetailPage{
		Product:      p,
		Price:        price,
		PriceLabel:   view.Money(price),
		ImageURL:     products.ResolveImage(p, sel.Color),
		Storage:      storage,
		Colors:       colors,
		CanAddToCart: len(missing) == 0,
		Missing:      missing,
	}
}

// catalogErr maps a catalog failure to an API error. Fetch failures never
// touch cart state.
func catalogErr(err error, publicMsg string) error {
	if products.IsNotFound(err) {
		return apperr.NotFoundErr("Product not found.")
	}
	if ae := apperr.Wrap(err); ae.Kind == apperr.Timeout {
		return ae
	}
	return apperr.UnavailableErr(publicMsg, err)
}
