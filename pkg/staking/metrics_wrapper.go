package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/edinar-labs/flexible-staking/internal/telemetry"
)

// MetricsFlexibleStaking wraps a FlexibleStaking and adds metrics
type MetricsFlexibleStaking struct {
	fs FlexibleStaking
}

func NewMetricsFlexibleStaking(fs FlexibleStaking) *MetricsFlexibleStaking {
	return &MetricsFlexibleStaking{fs: fs}
}

func record(operation string, err error) {
	if err != nil {
		telemetry.RecordStakeOperation(operation, "error")
		return
	}
	telemetry.RecordStakeOperation(operation, "success")
}

func (m *MetricsFlexibleStaking) UserInfo(opts *bind.CallOpts, user common.Address) (UserInfo, error) {
	info, err := m.fs.UserInfo(opts, user)
	record("user_info", err)
	return info, err
}

func (m *MetricsFlexibleStaking) PendingRewards(opts *bind.CallOpts, user common.Address) (*big.Int, error) {
	rewards, err := m.fs.PendingRewards(opts, user)
	record("pending_rewards", err)
	return rewards, err
}

func (m *MetricsFlexibleStaking) StakingToken(opts *bind.CallOpts) (common.Address, error) {
	token, err := m.fs.StakingToken(opts)
	record("staking_token", err)
	return token, err
}

func (m *MetricsFlexibleStaking) Stake(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	tx, err := m.fs.Stake(opts, amount)
	record("stake", err)
	return tx, err
}

func (m *MetricsFlexibleStaking) Unstake(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	tx, err := m.fs.Unstake(opts, amount)
	record("unstake", err)
	return tx, err
}

func (m *MetricsFlexibleStaking) ClaimRewards(opts *bind.TransactOpts) (*types.Transaction, error) {
	tx, err := m.fs.ClaimRewards(opts)
	record("claim_rewards", err)
	return tx, err
}

var _ FlexibleStaking = (*MetricsFlexibleStaking)(nil)
