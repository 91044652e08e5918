package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Arnau-Gelonch/zara-challenge/internal/http/middleware"
	"github.com/Arnau-Gelonch/zara-challenge/internal/http/validation"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/cart"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/payments"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/products"
	"github.com/Arnau-Gelonch/zara-challenge/internal/shared/apperr"
	"github.com/Arnau-Gelonch/zara-challenge/pkg/view"
)

// CartHandler handles the cart routes under /api/cart.
type CartHandler struct {
	Products products.Repository
	Payments payments.Provider
	Log      *slog.Logger
}

func NewCartHandler(repo products.Repository, pay payments.Provider, l *slog.Logger) *CartHandler {
	if pay == nil {
		pay = payments.Noop{}
	}
	if l == nil {
		l = slog.Default()
	}
	return &CartHandler{Products: repo, Payments: pay, Log: l}
}

type addRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Storage   string `json:"storage"`
	Color     *int   `json:"color"`
}

type removeRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Index     *int   `json:"index"`
}

type updateRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required"`
}

// Get handles GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, cart.BuildPage(middleware.CartStore(c).Snapshot()))
}

// Add handles POST /api/cart/items. The product is fetched fresh, the variant
// selection resolved to a price and image, and that snapshot is what the cart
// keeps.
func (h *CartHandler) Add(c *gin.Context) {
	var req addRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.Products.Get(c.Request.Context(), strings.TrimSpace(req.ProductID))
	if err != nil {
		middleware.Fail(c, catalogErr(err, "Error loading product details. Please try again."))
		return
	}

	sel := products.Selection{Storage: req.Storage, Color: products.NoColor}
	if req.Color != nil {
		sel.Color = *req.Color
	}
	if fields := products.SelectionErrors(p, sel); fields != nil {
		middleware.Fail(c, apperr.InvalidErr("Choose the product options before adding it to the cart.", fields))
		return
	}

	store := middleware.CartStore(c)
	store.Add(c.Request.Context(), products.Snapshot(p, sel))
	h.respond(c, http.StatusCreated, store)
}

// Remove handles POST /api/cart/items/remove. With an index only that line
// goes, and only if it holds the product; without one the first match goes.
func (h *CartHandler) Remove(c *gin.Context) {
	var req removeRequest
	if !bindJSON(c, &req) {
		return
	}

	store := middleware.CartStore(c)
	if req.Index != nil {
		store.RemoveAt(c.Request.Context(), req.ProductID, *req.Index)
	} else {
		store.Remove(c.Request.Context(), req.ProductID)
	}
	h.respond(c, http.StatusOK, store)
}

// Update handles POST /api/cart/items/update. Quantity <= 0 removes the line.
func (h *CartHandler) Update(c *gin.Context) {
	var req updateRequest
	if !bindJSON(c, &req) {
		return
	}

	store := middleware.CartStore(c)
	store.UpdateQuantity(c.Request.Context(), req.ProductID, *req.Quantity)
	h.respond(c, http.StatusOK, store)
}

// Clear handles POST /api/cart/clear
func (h *CartHandler) Clear(c *gin.Context) {
	store := middleware.CartStore(c)
	store.Clear(c.Request.Context())
	h.respond(c, http.StatusOK, store)
}

// Pay handles POST /api/cart/pay. It hands the total to the payment hook and
// leaves the cart as it is.
func (h *CartHandler) Pay(c *gin.Context) {
	snap := middleware.CartStore(c).Snapshot()
	res, err := h.Payments.CreatePayment(c.Request.Context(), payments.CreatePaymentRequest{
		SessionID: middleware.GetSessionID(c),
		Amount:    snap.TotalPrice,
		Currency:  view.Currency,
		Lines:     len(snap.Items),
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	h.Log.LogAttrs(c.Request.Context(), slog.LevelInfo, "cart_pay",
		slog.String("session_id", middleware.GetSessionID(c)),
		slog.String("provider", res.Provider),
		slog.String("amount", snap.TotalPrice.String()),
	)
	c.JSON(http.StatusAccepted, res)
}

func (h *CartHandler) respond(c *gin.Context, status int, store *cart.Store) {
	snap := store.Snapshot()
	middleware.SetCartCount(c, snap.TotalItems)
	c.JSON(status, cart.BuildPage(snap))
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid request.", validation.FromBindError(err, dst)))
		return false
	}
	return true
}
