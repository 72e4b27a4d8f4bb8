package apiclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryBuffer treats tokens this close to their exp claim as already expired.
const ExpiryBuffer = 60 * time.Second

// TokenExpired decodes the exp claim without verifying the signature. A token
// that cannot be decoded or carries no exp is expired.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.Unix() > exp.Unix()-int64(ExpiryBuffer/time.Second)
}
