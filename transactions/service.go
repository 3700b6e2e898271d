package transactions

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/cardvault/go-cardvault-client/gateway"
)

// Service wraps the /transactions endpoints.
type Service struct {
	gw *gateway.Client
}

// NewService creates a transaction service over the gateway.
func NewService(gw *gateway.Client) (*Service, error) {
	if gw == nil {
		return nil, errors.New("[transactions.NewService] gateway is required")
	}
	return &Service{gw: gw}, nil
}

// List returns a filtered, paginated transaction history.
func (s *Service) List(ctx context.Context, filters Filters) (*Page, error) {
	var out Page
	if err := s.gw.Get(ctx, withQuery("/transactions", filters.Query()), &out); err != nil {
		return nil, errors.Wrap(err, "[Service.List]")
	}
	return &out, nil
}

// Get returns one transaction by ID.
func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	var out Transaction
	if err := s.gw.Get(ctx, "/transactions/"+id, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Get]")
	}
	return &out, nil
}

// Create submits a client-initiated transaction (e.g. a transfer).
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Transaction, error) {
	if req.CardID == "" {
		return nil, errors.New("[Service.Create] cardId is required")
	}
	if req.Amount <= 0 {
		return nil, errors.New("[Service.Create] amount must be positive")
	}
	var out Transaction
	if err := s.gw.Post(ctx, "/transactions", req, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Create]")
	}
	return &out, nil
}

// Stats aggregates spending over the filtered window.
func (s *Service) Stats(ctx context.Context, filters Filters) (*Stats, error) {
	var out Stats
	if err := s.gw.Get(ctx, withQuery("/transactions/stats", filters.Query()), &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Stats]")
	}
	return &out, nil
}

// ByCard lists transactions for one card.
func (s *Service) ByCard(ctx context.Context, cardID string, filters Filters) (*Page, error) {
	var out Page
	path := fmt.Sprintf("/transactions/card/%s", cardID)
	if err := s.gw.Get(ctx, withQuery(path, filters.Query()), &out); err != nil {
		return nil, errors.Wrap(err, "[Service.ByCard]")
	}
	return &out, nil
}

// ByCategory lists transactions in one spending category.
func (s *Service) ByCategory(ctx context.Context, category Category, filters Filters) (*Page, error) {
	var out Page
	path := fmt.Sprintf("/transactions/category/%s", category)
	if err := s.gw.Get(ctx, withQuery(path, filters.Query()), &out); err != nil {
		return nil, errors.Wrap(err, "[Service.ByCategory]")
	}
	return &out, nil
}

// ByDateRange lists transactions between two instants.
func (s *Service) ByDateRange(ctx context.Context, from, to time.Time, filters Filters) (*Page, error) {
	q := filters.Query()
	q.Set("startDate", from.Format(time.RFC3339))
	q.Set("endDate", to.Format(time.RFC3339))
	var out Page
	if err := s.gw.Get(ctx, withQuery("/transactions/date-range", q), &out); err != nil {
		return nil, errors.Wrap(err, "[Service.ByDateRange]")
	}
	return &out, nil
}

// Search matches transactions against a free-text query.
func (s *Service) Search(ctx context.Context, query string, filters Filters) (*Page, error) {
	q := filters.Query()
	q.Set("q", query)
	var out Page
	if err := s.gw.Get(ctx, withQuery("/transactions/search", q), &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Search]")
	}
	return &out, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
