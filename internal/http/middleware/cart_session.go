package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Arnau-Gelonch/zara-challenge/internal/http/cartcookie"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/cart"
)

const (
	HeaderCartCount = "X-Cart-Count"
	CtxKeySessionID = "cart_session_id"
	ctxKeyCartStore = "cart_store"
)

// CartSession resolves the browser's cart session from its signed cookie,
// issuing a new one on first visit, and attaches the session's store.
func CartSession(codec *cartcookie.Codec, sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := codec.SessionID(c)
		if !ok {
			id = codec.Issue(c)
		}
		store := sessions.Store(c.Request.Context(), id)

		c.Set(CtxKeySessionID, id)
		c.Set(ctxKeyCartStore, store)
		SetCartCount(c, store.TotalItems())

		c.Next()
	}
}

// CartStore returns the store attached by CartSession. Routes mounted without
// that middleware are a wiring bug, so this panics instead of returning nil.
func CartStore(c *gin.Context) *cart.Store {
	v, ok := c.Get(ctxKeyCartStore)
	if !ok {
		panic("middleware: CartSession not installed on " + c.FullPath())
	}
	return v.(*cart.Store)
}

func GetSessionID(c *gin.Context) string {
	return c.GetString(CtxKeySessionID)
}

// SetCartCount publishes the navbar badge count. Call it before writing the body.
func SetCartCount(c *gin.Context, n int) {
	c.Header(HeaderCartCount, strconv.Itoa(n))
}
