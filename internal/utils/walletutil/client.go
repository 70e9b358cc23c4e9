package walletutil

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/internal/utils/keystoreutil"
)

// Wallet is a connected account: an RPC client plus the signer for its key.
type Wallet struct {
	client  *ethclient.Client
	address common.Address
	signer  *bind.TransactOpts
	chainID *big.Int
}

// ParsePrivateKey accepts a 64 character hex key with or without 0x.
func ParsePrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")

	if len(privateKeyHex) != 64 {
		return nil, fmt.Errorf("invalid private key - must be 64 hex characters")
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key format: %w", err)
	}
	return key, nil
}

// Connect loads the stored key and dials the configured RPC endpoint.
func Connect(ctx context.Context, cfg *config.Config) (*Wallet, error) {
	privateKey, err := keystoreutil.GetPrivateKey()
	if err != nil {
		return nil, err
	}
	return Dial(ctx, cfg, privateKey)
}

func Dial(ctx context.Context, cfg *config.Config, privateKey *ecdsa.PrivateKey) (*Wallet, error) {
	client, err := ethclient.DialContext(ctx, cfg.Blockchain.RPC)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Blockchain.RPC, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	if chainID.Int64() != cfg.Blockchain.ChainID {
		client.Close()
		return nil, fmt.Errorf("rpc chain id %s does not match configured chain id %d", chainID, cfg.Blockchain.ChainID)
	}

	signer, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	return &Wallet{
		client:  client,
		address: crypto.PubkeyToAddress(privateKey.PublicKey),
		signer:  signer,
		chainID: chainID,
	}, nil
}

func (w *Wallet) Address() common.Address {
	return w.address
}

func (w *Wallet) ChainID() *big.Int {
	return new(big.Int).Set(w.chainID)
}

func (w *Wallet) Backend() bind.ContractBackend {
	return w.client
}

// Signer returns a copy of the transactor bound to ctx.
func (w *Wallet) Signer(ctx context.Context) *bind.TransactOpts {
	opts := *w.signer
	opts.Context = ctx
	return &opts
}

func (w *Wallet) BlockNumber(ctx context.Context) (uint64, error) {
	return w.client.BlockNumber(ctx)
}

// WaitMined blocks until tx has a receipt or ctx is done.
func (w *Wallet) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, w.client, tx)
}

func (w *Wallet) Close() {
	w.client.Close()
}
