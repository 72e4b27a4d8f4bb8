package file

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopadmin/internal/domain"
	"shopadmin/internal/security/secretbox"
	"shopadmin/internal/store"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := NewStore(path, nil)

	_, err := s.Load(ctx, domain.SessionKey)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Save(ctx, domain.SessionKey, domain.Credentials{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, s.Save(ctx, "other", domain.Credentials{AccessToken: "x", RefreshToken: "y"}))

	// A second instance sees what the first wrote.
	reopened := NewStore(path, nil)
	creds, err := reopened.Load(ctx, domain.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, "a1", creds.AccessToken)
	assert.Equal(t, "r1", creds.RefreshToken)

	require.NoError(t, reopened.Delete(ctx, domain.SessionKey))
	_, err = s.Load(ctx, domain.SessionKey)
	require.ErrorIs(t, err, store.ErrNotFound)

	other, err := s.Load(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "x", other.AccessToken)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreSealsValues(t *testing.T) {
	ctx := context.Background()
	key := make([]byte, 32)
	box, err := secretbox.New(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.json")
	s := NewStore(path, box)
	require.NoError(t, s.Save(ctx, domain.SessionKey, domain.Credentials{AccessToken: "a1", RefreshToken: "r1"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "r1")

	creds, err := s.Load(ctx, domain.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, "r1", creds.RefreshToken)
}

func TestLoadReadsLegacyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"authUser":"{\"token\":\"old\",\"refreshToken\":\"r\"}"}`), 0o600))

	creds, err := NewStore(path, nil).Load(context.Background(), domain.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, "old", creds.AccessToken)
	assert.Equal(t, "r", creds.RefreshToken)
}

func TestDeleteMissingFileIsNoop(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.json"), nil)
	require.NoError(t, s.Delete(context.Background(), domain.SessionKey))
}
