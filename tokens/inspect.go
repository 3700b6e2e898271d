package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Expiry reads the exp claim of a JWT access token without verifying the
// signature. Verification is the server's job; this is only used to show
// expiry locally (e.g. `cardvault status`).
func Expiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "[Expiry] ParseUnverified")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New("[Expiry] token has no exp claim")
	}
	return exp.Time, nil
}
