package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiresWithin reports whether token is a JWT whose exp claim falls
// inside the next d. The signature is not verified; we only peek at the
// expiry to renew ahead of a guaranteed 401. Opaque (non-JWT) tokens
// and tokens without an exp claim report false, leaving the 401 path to
// handle expiry.
func expiresWithin(token string, d time.Duration) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return time.Now().Add(d).After(exp.Time)
}
