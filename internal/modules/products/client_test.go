package products

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
	{"id":"APL-IP15","name":"iPhone 15","brand":"Apple","basePrice":999,"imageUrl":"a.webp"},
	{"id":"SMG-S24","name":"Galaxy S24","brand":"Samsung","basePrice":899.5,"imageUrl":"s.webp"}
]`

func newTestClient(t *testing.T, h http.HandlerFunc, retries uint) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{
		BaseURL:    srv.URL + "/api/",
		APIKey:     "secret-key",
		Timeout:    2 * time.Second,
		MaxRetries: retries,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/path"} {
		_, err := NewClient(ClientConfig{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestClient_List(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "iphone", r.URL.Query().Get("search"))
		assert.False(t, r.URL.Query().Has("offset"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	}, 0)

	res, err := c.List(context.Background(), Query{Search: "  iphone ", Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "APL-IP15", res.Data[0].ID)
	assert.Equal(t, "899.5", res.Data[1].BasePrice.String())
}

func TestClient_ListEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}, 0)

	res, err := c.List(context.Background(), Query{})
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Equal(t, 0, res.Total)
}

func TestClient_Get(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/APL-IP15", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id":"APL-IP15","name":"iPhone 15","brand":"Apple","basePrice":999,"imageUrl":"a.webp",
			"storageOptions":[{"capacity":"128GB","price":999},{"capacity":"256GB","price":1099}],
			"colorOptions":[{"name":"Black","hexCode":"#000","imageUrl":"b.webp"}],
			"rating":4.6
		}`))
	}, 0)

	p, err := c.Get(context.Background(), "APL-IP15")
	require.NoError(t, err)

	assert.Equal(t, "iPhone 15", p.Name)
	require.Len(t, p.StorageOptions, 2)
	assert.Equal(t, "1099", p.StorageOptions[1].Price.String())
	require.NotNil(t, p.Rating)
	assert.Equal(t, 4.6, *p.Rating)
}

func TestClient_GetNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}, 3)

	_, err := c.Get(context.Background(), "missing")

	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GetEmptyID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, 0)

	_, err := c.Get(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"1","name":"x","brand":"y","basePrice":1,"imageUrl":""}`))
	}, 2)

	p, err := c.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 1)

	_, err := c.List(context.Background(), Query{})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorsArePermanent(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}, 3)

	_, err := c.List(context.Background(), Query{})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}, 3)

	_, err := c.Get(context.Background(), "1")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}
