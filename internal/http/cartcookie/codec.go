package cartcookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var ErrInvalid = errors.New("invalid cart session cookie")

const defaultMaxAge = 30 * 24 * time.Hour

// Codec signs the cookie that ties a browser to its cart slot. The cookie
// only carries the session id; the cart itself lives in slot storage.
type Codec struct {
	Secret     []byte
	CookieName string
	Secure     bool
	MaxAge     time.Duration

	now func() time.Time
}

func New(secret []byte, name string, secure bool) *Codec {
	return &Codec{Secret: secret, CookieName: name, Secure: secure, MaxAge: defaultMaxAge, now: time.Now}
}

// value format: sessionID.issuedAtUnix.base64(hmac(sessionID.issuedAtUnix))
func (c *Codec) Encode(sessionID string) string {
	payload := sessionID + "." + strconv.FormatInt(c.clock().Unix(), 10)
	return payload + "." + sign(c.Secret, payload)
}

func (c *Codec) Decode(v string) (string, error) {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return "", ErrInvalid
	}
	id, issued, sig := parts[0], parts[1], parts[2]
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalid
	}
	if !verify(c.Secret, id+"."+issued, sig) {
		return "", ErrInvalid
	}
	ts, err := strconv.ParseInt(issued, 10, 64)
	if err != nil {
		return "", ErrInvalid
	}
	if c.clock().Sub(time.Unix(ts, 0)) > c.maxAge() {
		return "", ErrInvalid
	}
	return id, nil
}

// SessionID returns the id carried by the request cookie. Tampered or expired
// cookies are cleared.
func (c *Codec) SessionID(ctx *gin.Context) (string, bool) {
	v, err := ctx.Cookie(c.CookieName)
	if err != nil || v == "" {
		return "", false
	}
	id, err := c.Decode(v)
	if err != nil {
		c.Clear(ctx)
		return "", false
	}
	return id, true
}

// Issue starts a new session and sets its cookie.
func (c *Codec) Issue(ctx *gin.Context) string {
	id := uuid.NewString()
	c.Set(ctx, id)
	return id
}

func (c *Codec) Set(ctx *gin.Context, sessionID string) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, c.Encode(sessionID), int(c.maxAge().Seconds()), "/", "", c.Secure, true)
}

func (c *Codec) Clear(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, "", -1, "/", "", c.Secure, true)
}

func (c *Codec) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Codec) maxAge() time.Duration {
	if c.MaxAge > 0 {
		return c.MaxAge
	}
	return defaultMaxAge
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verify(secret []byte, payload, sig string) bool {
	return hmac.Equal([]byte(sign(secret, payload)), []byte(sig))
}
