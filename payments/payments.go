// Package payments wraps the hosted-checkout provider integration. The
// provider itself is a black box: the platform API mints a checkout
// session, the user completes it on the provider's hosted page, and
// control returns through a redirect carrying query parameters.
package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cardvault/go-cardvault-client/gateway"
)

// CheckoutSession is a pending hosted-checkout flow. URL is where the user
// completes payment; SessionID correlates the redirect callback.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// IntentStatus is the state of a payment intent (legacy flow).
type IntentStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// Service wraps the /payments endpoints.
type Service struct {
	gw *gateway.Client
}

// NewService creates a payments service over the gateway.
func NewService(gw *gateway.Client) (*Service, error) {
	if gw == nil {
		return nil, errors.New("[payments.NewService] gateway is required")
	}
	return &Service{gw: gw}, nil
}

// CreateCheckoutSession asks the platform to mint a hosted-checkout
// session funding a new card. The idempotency key guards against double
// charges when the call is retried.
func (s *Service) CreateCheckoutSession(ctx context.Context, amount int64, currency, cardType string) (*CheckoutSession, error) {
	if amount <= 0 {
		return nil, errors.New("[Service.CreateCheckoutSession] amount must be positive")
	}
	if currency == "" {
		currency = "USD"
	}
	body := map[string]any{
		"amount":         amount,
		"currency":       currency,
		"cardType":       cardType,
		"idempotencyKey": uuid.New().String(),
	}
	var out CheckoutSession
	if err := s.gw.Post(ctx, "/payments/checkout", body, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.CreateCheckoutSession]")
	}
	if out.URL == "" {
		return nil, errors.New("[Service.CreateCheckoutSession] no checkout URL in response")
	}
	return &out, nil
}

// GetIntentStatus returns the state of a payment intent.
func (s *Service) GetIntentStatus(ctx context.Context, intentID string) (*IntentStatus, error) {
	var out IntentStatus
	if err := s.gw.Get(ctx, fmt.Sprintf("/payments/intent/%s/status", intentID), &out); err != nil {
		return nil, errors.Wrap(err, "[Service.GetIntentStatus]")
	}
	return &out, nil
}
