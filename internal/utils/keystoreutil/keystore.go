package keystoreutil

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edinar-labs/flexible-staking/pkg/keystore"
)

const (
	KeystoreDirName  = ".edinar"
	KeystoreFileName = "keystore.json"
)

var ErrNotAuthenticated = errors.New("no private key found - please authenticate first using 'edinar-staking auth'")

// GetKeystore opens the keystore under the user's home directory
func GetKeystore() (*keystore.Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	ks, err := keystore.NewKeystore(keystore.Config{
		DirPath:  filepath.Join(homeDir, KeystoreDirName),
		FileName: KeystoreFileName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create keystore: %w", err)
	}

	return ks, nil
}

func GetPrivateKey() (*ecdsa.PrivateKey, error) {
	ks, err := GetKeystore()
	if err != nil {
		return nil, err
	}

	privateKey, err := ks.LoadPrivateKey()
	if err != nil {
		if errors.Is(err, keystore.ErrNoPrivateKey) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	return privateKey, nil
}

func SavePrivateKey(privateKeyHex string) (string, error) {
	ks, err := GetKeystore()
	if err != nil {
		return "", err
	}

	if err := ks.SavePrivateKey(privateKeyHex); err != nil {
		return "", err
	}
	return ks.Path(), nil
}
