package apiclient

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenExpired(t *testing.T) {
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("k"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		expired bool
	}{
		{"expires in 120s", mintToken(t, testNow.Add(120*time.Second)), false},
		{"expires in 61s", mintToken(t, testNow.Add(61*time.Second)), false},
		{"expires in 60s", mintToken(t, testNow.Add(60*time.Second)), false},
		{"expires in 59s", mintToken(t, testNow.Add(59*time.Second)), true},
		{"expires in 30s", mintToken(t, testNow.Add(30*time.Second)), true},
		{"already expired", mintToken(t, testNow.Add(-time.Hour)), true},
		{"missing exp", noExp, true},
		{"garbage", "abc.def", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, TokenExpired(tt.token, testNow))
		})
	}
}
