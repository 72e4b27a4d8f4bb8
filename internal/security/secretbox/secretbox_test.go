package secretbox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestEncryptDecrypt(t *testing.T) {
	box, err := New(testKey())
	require.NoError(t, err)

	ciphertext, err := box.Encrypt(`{"accessToken":"a"}`)
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "accessToken")

	plaintext, err := box.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, `{"accessToken":"a"}`, plaintext)
}

func TestDecryptRejectsTampering(t *testing.T) {
	box, err := New(testKey())
	require.NoError(t, err)

	ciphertext, err := box.Encrypt("secret")
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = box.Decrypt(base64.StdEncoding.EncodeToString(raw))
	require.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = box.Decrypt("AAAA")
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestNewValidatesKey(t *testing.T) {
	_, err := New("")
	require.Error(t, err)

	_, err = New(base64.StdEncoding.EncodeToString([]byte("short")))
	require.Error(t, err)

	_, err = New("not base64!")
	require.Error(t, err)
}
