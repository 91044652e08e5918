package products

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product not found")

// Query narrows a product listing. Zero values are left out of the request.
type Query struct {
	Search string
	Limit  int
	Offset int
}

type ListResult struct {
	Data  []Product `json:"data"`
	Total int       `json:"total"`
}

// Repository is the read-only product data source.
type Repository interface {
	List(ctx context.Context, q Query) (ListResult, error)
	Get(ctx context.Context, id string) (Product, error)
}
