package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidErr("bad", nil), http.StatusBadRequest},
		{NotFoundErr("gone"), http.StatusNotFound},
		{ConflictErr("dup"), http.StatusConflict},
		{UnavailableErr("down", errors.New("dial")), http.StatusBadGateway},
		{Wrap(context.DeadlineExceeded), http.StatusGatewayTimeout},
		{Wrap(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("outer: %w", NotFoundErr("gone")), http.StatusNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil))

	orig := NotFoundErr("Product not found.")
	assert.Same(t, orig, Wrap(orig))

	cause := errors.New("db down")
	w := Wrap(cause)
	assert.Equal(t, Internal, w.Kind)
	assert.ErrorIs(t, w, cause)
	assert.Equal(t, "internal: db down", w.Error())
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Product not found.", PublicMessage(NotFoundErr("Product not found.")))
	assert.Equal(t, defaultPublicMsg, PublicMessage(errors.New("secret detail")))
	assert.Equal(t, defaultPublicMsg, PublicMessage(&AppError{Kind: Invalid}))
}
