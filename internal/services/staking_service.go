package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/utils/walletutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
	"github.com/edinar-labs/flexible-staking/pkg/staking"
)

// StakingService is a connected wallet together with its session and poller.
type StakingService struct {
	Wallet  *walletutil.Wallet
	Session *session.Session
	Poller  *session.Poller
}

// Connect loads the stored key, dials the RPC endpoint and binds the staking contract.
func Connect(ctx context.Context, cfg *config.Config, notifier session.Notifier) (*StakingService, error) {
	log := logger.WithComponent("staking_service")

	wallet, err := walletutil.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := NewStakingService(ctx, cfg, wallet, notifier)
	if err != nil {
		wallet.Close()
		return nil, err
	}

	log.Info().
		Str("wallet", wallet.Address().Hex()).
		Str("contract", svc.Session.ContractAddress().Hex()).
		Str("network", cfg.Blockchain.NetworkName).
		Str("chain_id", wallet.ChainID().String()).
		Msg("Wallet connected")

	return svc, nil
}

func NewStakingService(ctx context.Context, cfg *config.Config, wallet *walletutil.Wallet, notifier session.Notifier) (*StakingService, error) {
	contractAddr := common.HexToAddress(cfg.Blockchain.StakingAddress)

	code, err := wallet.Backend().CodeAt(ctx, contractAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract code: %w", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("no contract deployed at %s", contractAddr.Hex())
	}

	contract, err := staking.NewFlexibleStaking(contractAddr, wallet.Backend())
	if err != nil {
		return nil, fmt.Errorf("failed to bind staking contract: %w", err)
	}

	sess := session.New(session.Deps{
		Address:         wallet.Address(),
		ContractAddress: contractAddr,
		Contract:        staking.NewMetricsFlexibleStaking(contract),
		Signer:          wallet.Signer,
		Confirmer:       wallet,
		BindToken: func(address common.Address) (staking.Token, error) {
			token, err := staking.NewToken(address, wallet.Backend())
			if err != nil {
				return nil, err
			}
			return token, nil
		},
		Notifier:       notifier,
		ConfirmTimeout: cfg.Staking.ConfirmTimeout,
	})

	return &StakingService{
		Wallet:  wallet,
		Session: sess,
		Poller:  session.NewPoller(sess, cfg.Staking.PollInterval),
	}, nil
}

// Close stops polling and releases the RPC connection.
func (s *StakingService) Close() {
	s.Poller.Stop()
	s.Wallet.Close()
}
