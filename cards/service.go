package cards

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/cardvault/go-cardvault-client/gateway"
	"github.com/cardvault/go-cardvault-client/payments"
	"github.com/cardvault/go-cardvault-client/users"
)

// Service wraps the /cards endpoints. All calls go through the gateway,
// so token refresh is transparent.
type Service struct {
	gw *gateway.Client
}

// NewService creates a card service over the gateway.
func NewService(gw *gateway.Client) (*Service, error) {
	if gw == nil {
		return nil, errors.New("[cards.NewService] gateway is required")
	}
	return &Service{gw: gw}, nil
}

// List returns all cards owned by the authenticated user.
func (s *Service) List(ctx context.Context) ([]Card, error) {
	var out []Card
	if err := s.gw.Get(ctx, "/cards", &out); err != nil {
		return nil, errors.Wrap(err, "[Service.List]")
	}
	return out, nil
}

// Get returns one card by ID.
func (s *Service) Get(ctx context.Context, id string) (*Card, error) {
	var out Card
	if err := s.gw.Get(ctx, "/cards/"+id, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Get]")
	}
	return &out, nil
}

// Create orders a new card.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Card, error) {
	if req.Type != TypeVirtual && req.Type != TypePhysical {
		return nil, errors.Errorf("[Service.Create] invalid card type %q", req.Type)
	}
	if req.CardholderName != "" {
		if err := users.ValidateName(req.CardholderName); err != nil {
			return nil, errors.Wrap(err, "[Service.Create]")
		}
	}
	var out Card
	if err := s.gw.Post(ctx, "/cards", req, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Create]")
	}
	return &out, nil
}

// UpdateLimits adjusts the card's spending limits.
func (s *Service) UpdateLimits(ctx context.Context, id string, req UpdateLimitsRequest) (*Card, error) {
	var out Card
	if err := s.gw.Put(ctx, fmt.Sprintf("/cards/%s/limits", id), req, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateLimits]")
	}
	return &out, nil
}

// UpdateControls toggles the card's transaction controls.
func (s *Service) UpdateControls(ctx context.Context, id string, req UpdateControlsRequest) (*Card, error) {
	var out Card
	if err := s.gw.Put(ctx, fmt.Sprintf("/cards/%s/controls", id), req, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateControls]")
	}
	return &out, nil
}

// UpdatePIN changes the card PIN. The current PIN is required once one has
// been set.
func (s *Service) UpdatePIN(ctx context.Context, id, currentPIN, newPIN string) error {
	if err := users.ValidatePIN(newPIN); err != nil {
		return errors.Wrap(err, "[Service.UpdatePIN]")
	}
	body := map[string]string{"newPin": newPIN}
	if currentPIN != "" {
		body["currentPin"] = currentPIN
	}
	if err := s.gw.Put(ctx, fmt.Sprintf("/cards/%s/pin", id), body, nil); err != nil {
		return errors.Wrap(err, "[Service.UpdatePIN]")
	}
	return nil
}

// Activate turns a pending card active.
func (s *Service) Activate(ctx context.Context, id string) (*Card, error) {
	var out Card
	if err := s.gw.Post(ctx, fmt.Sprintf("/cards/%s/activate", id), nil, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Activate]")
	}
	return &out, nil
}

// Block freezes the card.
func (s *Service) Block(ctx context.Context, id, reason string) (*Card, error) {
	var out Card
	if err := s.gw.Post(ctx, fmt.Sprintf("/cards/%s/block", id), map[string]string{"reason": reason}, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Block]")
	}
	return &out, nil
}

// Unblock unfreezes a blocked card.
func (s *Service) Unblock(ctx context.Context, id string) (*Card, error) {
	var out Card
	if err := s.gw.Post(ctx, fmt.Sprintf("/cards/%s/unblock", id), nil, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Unblock]")
	}
	return &out, nil
}

// Cancel permanently cancels the card.
func (s *Service) Cancel(ctx context.Context, id, reason string) (*Card, error) {
	var out Card
	if err := s.gw.Post(ctx, fmt.Sprintf("/cards/%s/cancel", id), map[string]string{"reason": reason}, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Cancel]")
	}
	return &out, nil
}

// Balance returns the card's current balance.
func (s *Service) Balance(ctx context.Context, id string) (*Balance, error) {
	var out Balance
	if err := s.gw.Get(ctx, fmt.Sprintf("/cards/%s/balance", id), &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Balance]")
	}
	return &out, nil
}

// TopUp starts a hosted-checkout funding flow for the card. The returned
// session carries the URL the user must visit; completion arrives through
// the payments callback listener.
func (s *Service) TopUp(ctx context.Context, id string, amount int64, currency string) (*payments.CheckoutSession, error) {
	if amount <= 0 {
		return nil, errors.New("[Service.TopUp] amount must be positive")
	}
	if currency == "" {
		currency = "USD"
	}
	body := map[string]any{"amount": amount, "currency": currency}
	var out payments.CheckoutSession
	if err := s.gw.Post(ctx, fmt.Sprintf("/cards/%s/top-up", id), body, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.TopUp]")
	}
	return &out, nil
}
