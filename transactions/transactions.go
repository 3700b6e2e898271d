// Package transactions models card transactions and wraps the
// /transactions endpoints.
package transactions

import (
	"net/url"
	"strconv"
	"time"
)

// Type is the transaction kind.
type Type string

const (
	TypePurchase   Type = "purchase"
	TypeWithdrawal Type = "withdrawal"
	TypeDeposit    Type = "deposit"
	TypeTransfer   Type = "transfer"
	TypeRefund     Type = "refund"
	TypeFee        Type = "fee"
	TypeReversal   Type = "reversal"
)

// Status is the settlement state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusDeclined   Status = "declined"
	StatusRefunded   Status = "refunded"
)

// Category buckets spending for stats.
type Category string

const (
	CategoryFoodAndDining     Category = "food_and_dining"
	CategoryTransportation    Category = "transportation"
	CategoryEntertainment     Category = "entertainment"
	CategoryShopping          Category = "shopping"
	CategoryHealthcare        Category = "healthcare"
	CategoryTravel            Category = "travel"
	CategoryBillsAndUtilities Category = "bills_and_utilities"
	CategoryEducation         Category = "education"
	CategoryGasAndFuel        Category = "gas_and_fuel"
	CategoryGroceries         Category = "groceries"
	CategorySubscriptions     Category = "subscriptions"
	CategoryUtilities         Category = "utilities"
	CategoryOther             Category = "other"
)

// Transaction mirrors a remote card transaction. Amounts are in minor
// units (cents).
type Transaction struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	CardID     string `json:"cardId"`
	ExternalID string `json:"externalId,omitempty"`

	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Type     Type     `json:"type"`
	Status   Status   `json:"status"`
	Category Category `json:"category,omitempty"`

	Description          string `json:"description,omitempty"`
	MerchantName         string `json:"merchantName,omitempty"`
	MerchantCategoryCode string `json:"merchantCategoryCode,omitempty"`
	MerchantCity         string `json:"merchantCity,omitempty"`
	MerchantCountry      string `json:"merchantCountry,omitempty"`

	AuthorizationCode string `json:"authorizationCode,omitempty"`
	ReferenceNumber   string `json:"referenceNumber,omitempty"`

	FeeAmount        int64   `json:"feeAmount,omitempty"`
	ExchangeRate     float64 `json:"exchangeRate,omitempty"`
	OriginalAmount   int64   `json:"originalAmount,omitempty"`
	OriginalCurrency string  `json:"originalCurrency,omitempty"`

	DeclinedReason string `json:"declinedReason,omitempty"`
	DeclinedCode   string `json:"declinedCode,omitempty"`

	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Settled reports whether the transaction has reached a terminal state.
func (t *Transaction) Settled() bool {
	switch t.Status {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusDeclined, StatusRefunded:
		return true
	}
	return false
}

// CreateRequest is the payload for a client-initiated transaction.
type CreateRequest struct {
	CardID       string `json:"cardId"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency,omitempty"`
	Type         Type   `json:"type"`
	Description  string `json:"description,omitempty"`
	MerchantName string `json:"merchantName,omitempty"`
}

// Page is the paginated list shape returned by the list endpoints.
type Page struct {
	Items      []Transaction `json:"items"`
	Total      int           `json:"total"`
	PageNumber int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
	HasNext    bool          `json:"hasNext"`
	HasPrev    bool          `json:"hasPrev"`
}

// Filters narrows a transaction listing. Zero values are omitted from the
// query string.
type Filters struct {
	Statuses     []Status
	Types        []Type
	Categories   []Category
	DateFrom     time.Time
	DateTo       time.Time
	AmountMin    int64
	AmountMax    int64
	MerchantName string
	Search       string

	Page  int
	Limit int
}

// Query encodes the filters as URL query parameters.
func (f Filters) Query() url.Values {
	q := url.Values{}
	for _, s := range f.Statuses {
		q.Add("status", string(s))
	}
	for _, t := range f.Types {
		q.Add("type", string(t))
	}
	for _, c := range f.Categories {
		q.Add("category", string(c))
	}
	if !f.DateFrom.IsZero() {
		q.Set("dateFrom", f.DateFrom.Format(time.RFC3339))
	}
	if !f.DateTo.IsZero() {
		q.Set("dateTo", f.DateTo.Format(time.RFC3339))
	}
	if f.AmountMin > 0 {
		q.Set("amountMin", strconv.FormatInt(f.AmountMin, 10))
	}
	if f.AmountMax > 0 {
		q.Set("amountMax", strconv.FormatInt(f.AmountMax, 10))
	}
	if f.MerchantName != "" {
		q.Set("merchantName", f.MerchantName)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Stats aggregates spending over a filtered window.
type Stats struct {
	TotalTransactions int   `json:"totalTransactions"`
	TotalAmount       int64 `json:"totalAmount"`
	AverageAmount     int64 `json:"averageAmount"`
	PendingAmount     int64 `json:"pendingAmount"`
	CompletedAmount   int64 `json:"completedAmount"`
	MonthlySpent      int64 `json:"monthlySpent"`
	DailySpent        int64 `json:"dailySpent"`

	TopCategories []CategoryTotal `json:"topCategories,omitempty"`
	TopMerchants  []MerchantTotal `json:"topMerchants,omitempty"`
}

// CategoryTotal is one row of the per-category breakdown.
type CategoryTotal struct {
	Category Category `json:"category"`
	Amount   int64    `json:"amount"`
	Count    int      `json:"count"`
}

// MerchantTotal is one row of the per-merchant breakdown.
type MerchantTotal struct {
	MerchantName string `json:"merchantName"`
	Amount       int64  `json:"amount"`
	Count        int    `json:"count"`
}
