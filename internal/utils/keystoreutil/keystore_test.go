package keystoreutil

import (
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivateKeyLifecycle(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := GetPrivateKey()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	path, err := SavePrivateKey(hex.EncodeToString(crypto.FromECDSA(key)))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, KeystoreDirName, KeystoreFileName), path)

	loaded, err := GetPrivateKey()
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(loaded.PublicKey))
}

func TestSavePrivateKey_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := SavePrivateKey("zz")
	assert.Error(t, err)
}
