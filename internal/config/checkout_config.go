package config

import "time"

type CheckoutConfig interface {
	GetCheckoutCallbackAddr() string
	GetCheckoutTimeout() time.Duration
}

type Checkout struct{}

var _ CheckoutConfig = Checkout{}

// GetCheckoutCallbackAddr returns the address the local listener binds to
// while waiting for the hosted checkout page to redirect back.
func (Checkout) GetCheckoutCallbackAddr() string {
	return GetEnv("CHECKOUT_CALLBACK_ADDR", "localhost:8910")
}

func (Checkout) GetCheckoutTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv("CHECKOUT_TIMEOUT", "5m"))
	if err != nil {
		return 5 * time.Minute
	}
	return d
}
