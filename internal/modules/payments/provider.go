package payments

import (
	"context"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	SessionID string
	Amount    decimal.Decimal
	Currency  string
	Lines     int
}

type CreatePaymentResponse struct {
	Provider string `json:"provider"`
	Status   string `json:"status"` // accepted|noop
}

// Provider is the hook behind the cart's pay button.
type Provider interface {
	Name() string
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (CreatePaymentResponse, error)
}

// Noop accepts every request and charges nothing. The storefront does not
// process payments; the pay action only needs somewhere to land.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) CreatePayment(context.Context, CreatePaymentRequest) (CreatePaymentResponse, error) {
	return CreatePaymentResponse{Provider: "noop", Status: "noop"}, nil
}
