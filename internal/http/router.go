package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Arnau-Gelonch/zara-challenge/internal/http/cartcookie"
	"github.com/Arnau-Gelonch/zara-challenge/internal/http/handlers"
	"github.com/Arnau-Gelonch/zara-challenge/internal/http/middleware"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/cart"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/payments"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/products"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Products products.Repository
	Cache    *products.Cache
	Sessions *cart.Sessions
	Cookies  *cartcookie.Codec
	Payments payments.Provider
}

func NewRouter(logger *slog.Logger, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.ErrorHandler(logger),
		middleware.Recovery(logger),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	repo := d.Products
	if d.Cache != nil {
		repo = d.Cache
	}

	api := r.Group("/api")

	ph := handlers.NewProductsHandler(d.Products, d.Cache)
	api.GET("/products", ph.List)
	api.GET("/products/:id", ph.Show)
	api.POST("/products/:id/prefetch", ph.Prefetch)

	ch := handlers.NewCartHandler(repo, d.Payments, logger)
	cartGroup := api.Group("/cart", middleware.CartSession(d.Cookies, d.Sessions))
	cartGroup.GET("", ch.Get)
	cartGroup.GET("/count", handlers.GetBadge)
	cartGroup.POST("/items", ch.Add)
	cartGroup.POST("/items/remove", ch.Remove)
	cartGroup.POST("/items/update", ch.Update)
	cartGroup.POST("/clear", ch.Clear)
	cartGroup.POST("/pay", ch.Pay)

	return r
}
