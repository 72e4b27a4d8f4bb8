package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shopadmin/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Store persists session credentials under a key. Save writes the access and
// refresh token as one value so readers never observe half a rotation.
type Store interface {
	Load(ctx context.Context, key string) (domain.Credentials, error)
	Save(ctx context.Context, key string, creds domain.Credentials) error
	Delete(ctx context.Context, key string) error
}

// Sealer encrypts values before they reach durable storage.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

// Encode renders credentials as the stored JSON document, sealed when a Sealer
// is given.
func Encode(creds domain.Credentials, sealer Sealer) (string, error) {
	raw, err := json.Marshal(creds.Normalize())
	if err != nil {
		return "", fmt.Errorf("marshal credentials: %w", err)
	}
	if sealer == nil {
		return string(raw), nil
	}
	sealed, err := sealer.Encrypt(string(raw))
	if err != nil {
		return "", fmt.Errorf("seal credentials: %w", err)
	}
	return sealed, nil
}

// Decode reverses Encode. A value without an access token is treated as absent.
func Decode(value string, sealer Sealer) (domain.Credentials, error) {
	if sealer != nil {
		opened, err := sealer.Decrypt(value)
		if err != nil {
			return domain.Credentials{}, fmt.Errorf("open credentials: %w", err)
		}
		value = opened
	}
	var creds domain.Credentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return domain.Credentials{}, fmt.Errorf("unmarshal credentials: %w", err)
	}
	creds = creds.Normalize()
	if creds.AccessToken == "" {
		return domain.Credentials{}, ErrNotFound
	}
	return creds, nil
}
