// Package users holds the CardVault account profile model and the
// client-side validation rules applied before a request leaves the client.
package users

import "time"

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	StatusPendingVerification UserStatus = "pending_verification"
	StatusActive              UserStatus = "active"
	StatusSuspended           UserStatus = "suspended"
	StatusClosed              UserStatus = "closed"
	StatusExpired             UserStatus = "expired"
)

// KycStatus is the identity-verification state.
type KycStatus string

const (
	KycNotStarted KycStatus = "not_started"
	KycPending    KycStatus = "pending"
	KycApproved   KycStatus = "approved"
	KycRejected   KycStatus = "rejected"
	KycExpired    KycStatus = "expired"
)

// User mirrors the remote account profile. It is cached locally by the
// usercache package so page loads do not need a network round trip.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	DateOfBirth string     `json:"dateOfBirth,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	Country     string     `json:"country,omitempty"`
	PostalCode  string     `json:"postalCode,omitempty"`
	Status      UserStatus `json:"status,omitempty"`
	KycStatus   KycStatus  `json:"kycStatus,omitempty"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`

	EmailVerified bool `json:"emailVerified"`
	PhoneVerified bool `json:"phoneVerified"`

	Timezone    string         `json:"timezone,omitempty"`
	Language    string         `json:"language,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`
}

// Partial carries a sparse profile update; nil fields are left untouched
// when merged into an existing profile.
type Partial struct {
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	Country    *string `json:"country,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Timezone   *string `json:"timezone,omitempty"`
	Language   *string `json:"language,omitempty"`
	AvatarURL  *string `json:"avatarUrl,omitempty"`
}

// FullName joins the name fields, tolerating either being empty.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Active reports whether the account can transact.
func (u *User) Active() bool {
	return u.Status == StatusActive
}

// Merge applies the non-nil fields of p onto a copy of u.
func (u User) Merge(p Partial) User {
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&u.FirstName, p.FirstName)
	apply(&u.LastName, p.LastName)
	apply(&u.Address, p.Address)
	apply(&u.City, p.City)
	apply(&u.State, p.State)
	apply(&u.Country, p.Country)
	apply(&u.PostalCode, p.PostalCode)
	apply(&u.Timezone, p.Timezone)
	apply(&u.Language, p.Language)
	apply(&u.AvatarURL, p.AvatarURL)
	return u
}
