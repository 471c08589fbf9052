package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid RSA public key for testing (corresponding to above private key)
const testPublicKeyPEM = `
-----BEGIN PUBLIC KEY-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAp3bPIMFEIgfqdci/B/eO
jeNf8KtYxWR6kPZlKNQ7Yec2Rzgii0oIdZzFht3/p0XHYZtvtzmtHtdfA7Jbp5Sl
MRxvxBPwhos7T9d/cb2Zskd6Uhq9inkhgBCoTYlyr9lFaOXyLBUnL5oG3/4+OV0a
NRSyPfMhfE8BEj68MrG8+BFuWWtqg0qwvlXKXX3hHfdowOfY/TlHEmz7vzUCy7sT
dqn/IUwPOiP3Feow52EApn67AhaHduqtOzOOsaiwWX3uKNG81+rKQvjBNJmGtbas
Bdg7oMoUKYuLGRhgafvcI3SjlY4FY9alEI2ncoxbVoNWXC5YpqngvuwOO3WmT2sS
iQIDAQAB
-----END PUBLIC KEY-----
`

// Invalid PEM for testing error cases
const invalidKeyPEM = `-----BEGIN INVALID KEY-----
This is not a valid PEM key
-----END INVALID KEY-----`

func writePEM(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInitSecret_HMACOnly(t *testing.T) {
	secret, err := InitSecret("shared-key", "")

	require.NoError(t, err)
	assert.Equal(t, []byte("shared-key"), secret.SigningKey)
	assert.Nil(t, secret.Public)
}

func TestInitSecret_PublicKey(t *testing.T) {
	secret, err := InitSecret("", writePEM(t, testPublicKeyPEM))

	require.NoError(t, err)
	require.NotNil(t, secret.Public)
	assert.Equal(t, 2048, secret.Public.N.BitLen(), "Public key should be 2048-bit")
	assert.Nil(t, secret.SigningKey)
}

func TestInitSecret_BothKeys(t *testing.T) {
	secret, err := InitSecret("shared-key", writePEM(t, testPublicKeyPEM))

	require.NoError(t, err)
	assert.NotNil(t, secret.SigningKey)
	assert.NotNil(t, secret.Public)
}

func TestInitSecret_MissingPublicKeyFile(t *testing.T) {
	secret, err := InitSecret("", filepath.Join(t.TempDir(), "missing.pem"))

	assert.Error(t, err)
	assert.Nil(t, secret)
}

func TestInitSecret_InvalidPublicKey(t *testing.T) {
	secret, err := InitSecret("", writePEM(t, invalidKeyPEM))

	assert.Error(t, err)
	assert.Nil(t, secret)
	assert.Contains(t, err.Error(), "invalid public key")
}

func TestInitSecret_NothingConfigured(t *testing.T) {
	secret, err := InitSecret("", "")

	assert.Error(t, err)
	assert.Nil(t, secret)
}
