// Package cards models prepaid cards and wraps the /cards endpoints.
package cards

import "time"

// Type distinguishes virtual from physical cards.
type Type string

const (
	TypeVirtual  Type = "virtual"
	TypePhysical Type = "physical"
)

// Status is the card lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusBlocked   Status = "blocked"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Network is the card scheme.
type Network string

const (
	NetworkVisa       Network = "visa"
	NetworkMastercard Network = "mastercard"
	NetworkAmex       Network = "amex"
	NetworkDiscover   Network = "discover"
)

// Card mirrors a remote prepaid card. Amounts are in minor units (cents).
type Card struct {
	ID             string  `json:"id"`
	UserID         string  `json:"userId"`
	CardToken      string  `json:"cardToken"`
	Last4          string  `json:"last4"`
	Network        Network `json:"network"`
	Type           Type    `json:"type"`
	ExpiryMonth    int     `json:"expiryMonth"`
	ExpiryYear     int     `json:"expiryYear"`
	Status         Status  `json:"status"`
	CardholderName string  `json:"cardholderName,omitempty"`

	DailyLimit       int64 `json:"dailyLimit"`
	MonthlyLimit     int64 `json:"monthlyLimit"`
	TransactionLimit int64 `json:"transactionLimit"`
	ATMDailyLimit    int64 `json:"atmDailyLimit"`
	ATMMonthlyLimit  int64 `json:"atmMonthlyLimit"`

	AllowOnlineTransactions        bool `json:"allowOnlineTransactions"`
	AllowATMTransactions           bool `json:"allowAtmTransactions"`
	AllowInternationalTransactions bool `json:"allowInternationalTransactions"`
	AllowGambling                  bool `json:"allowGambling"`
	AllowCashback                  bool `json:"allowCashback"`

	ActivatedAt   *time.Time `json:"activatedAt,omitempty"`
	LastUsedAt    *time.Time `json:"lastUsedAt,omitempty"`
	BlockedAt     *time.Time `json:"blockedAt,omitempty"`
	BlockedReason string     `json:"blockedReason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Usable reports whether the card can transact right now.
func (c *Card) Usable() bool {
	return c.Status == StatusActive
}

// Balance is the card's funds split by settlement state.
type Balance struct {
	AvailableBalance int64  `json:"availableBalance"`
	PendingBalance   int64  `json:"pendingBalance"`
	TotalBalance     int64  `json:"totalBalance"`
	Currency         string `json:"currency"`
}

// CreateRequest is the card-creation payload. Zero-valued optional fields
// are omitted so the server applies its defaults.
type CreateRequest struct {
	Type             Type   `json:"type"`
	CardholderName   string `json:"cardholderName,omitempty"`
	DailyLimit       int64  `json:"dailyLimit,omitempty"`
	MonthlyLimit     int64  `json:"monthlyLimit,omitempty"`
	TransactionLimit int64  `json:"transactionLimit,omitempty"`
	ATMDailyLimit    int64  `json:"atmDailyLimit,omitempty"`
	ATMMonthlyLimit  int64  `json:"atmMonthlyLimit,omitempty"`

	AllowOnlineTransactions        *bool `json:"allowOnlineTransactions,omitempty"`
	AllowATMTransactions           *bool `json:"allowAtmTransactions,omitempty"`
	AllowInternationalTransactions *bool `json:"allowInternationalTransactions,omitempty"`
	AllowGambling                  *bool `json:"allowGambling,omitempty"`
	AllowCashback                  *bool `json:"allowCashback,omitempty"`
}

// UpdateLimitsRequest adjusts spending limits; nil fields stay unchanged.
type UpdateLimitsRequest struct {
	DailyLimit       *int64 `json:"dailyLimit,omitempty"`
	MonthlyLimit     *int64 `json:"monthlyLimit,omitempty"`
	TransactionLimit *int64 `json:"transactionLimit,omitempty"`
	ATMDailyLimit    *int64 `json:"atmDailyLimit,omitempty"`
	ATMMonthlyLimit  *int64 `json:"atmMonthlyLimit,omitempty"`
}

// UpdateControlsRequest toggles transaction controls; nil fields stay
// unchanged.
type UpdateControlsRequest struct {
	AllowOnlineTransactions        *bool `json:"allowOnlineTransactions,omitempty"`
	AllowATMTransactions           *bool `json:"allowAtmTransactions,omitempty"`
	AllowInternationalTransactions *bool `json:"allowInternationalTransactions,omitempty"`
	AllowGambling                  *bool `json:"allowGambling,omitempty"`
	AllowCashback                  *bool `json:"allowCashback,omitempty"`
}
