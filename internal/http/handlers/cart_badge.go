package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Arnau-Gelonch/zara-challenge/internal/http/middleware"
)

// GetBadge handles GET /api/cart/count, the navbar badge poll.
func GetBadge(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": middleware.CartStore(c).TotalItems()})
}
