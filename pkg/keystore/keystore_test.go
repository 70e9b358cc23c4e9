package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestKeystore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".edinar")

	ks, err := NewKeystore(Config{DirPath: dir, FileName: "keystore.json"})
	require.NoError(t, err)

	t.Run("load before save", func(t *testing.T) {
		_, err := ks.LoadPrivateKey()
		assert.ErrorIs(t, err, ErrNoPrivateKey)
	})

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, ks.SavePrivateKey("0x"+testKey))

		key, err := ks.LoadPrivateKey()
		require.NoError(t, err)

		expected, err := crypto.HexToECDSA(testKey)
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(expected.PublicKey), crypto.PubkeyToAddress(key.PublicKey))

		info, err := os.Stat(ks.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("invalid key", func(t *testing.T) {
		err := ks.SavePrivateKey("not-a-key")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid private key format")
	})

	t.Run("corrupt file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(ks.Path(), []byte("{"), 0600))
		_, err := ks.LoadPrivateKey()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid keystore format")
	})
}

func TestNewKeystore_MissingConfig(t *testing.T) {
	_, err := NewKeystore(Config{})
	assert.Error(t, err)
}
