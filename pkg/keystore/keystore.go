package keystore

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoPrivateKey is returned when the keystore file does not exist or holds no key.
var ErrNoPrivateKey = errors.New("no private key in keystore")

type Config struct {
	DirPath  string
	FileName string
}

// Store persists a single hex-encoded private key as JSON.
type Store struct {
	path string
}

type keyFile struct {
	PrivateKey string `json:"private_key"`
	CreatedAt  int64  `json:"created_at"`
}

func NewKeystore(cfg Config) (*Store, error) {
	if cfg.DirPath == "" || cfg.FileName == "" {
		return nil, fmt.Errorf("keystore directory and file name are required")
	}

	if err := os.MkdirAll(cfg.DirPath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create keystore directory: %w", err)
	}

	return &Store{path: filepath.Join(cfg.DirPath, cfg.FileName)}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) SavePrivateKey(privateKeyHex string) error {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	if _, err := crypto.HexToECDSA(privateKeyHex); err != nil {
		return fmt.Errorf("invalid private key format: %w", err)
	}

	data, err := json.MarshalIndent(keyFile{
		PrivateKey: privateKeyHex,
		CreatedAt:  time.Now().Unix(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keystore file: %w", err)
	}

	return nil
}

func (s *Store) LoadPrivateKey() (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoPrivateKey
		}
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("invalid keystore format: %w", err)
	}

	if kf.PrivateKey == "" {
		return nil, ErrNoPrivateKey
	}

	return crypto.HexToECDSA(kf.PrivateKey)
}
