package mocks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"

	"github.com/edinar-labs/flexible-staking/pkg/staking"
)

type MockFlexibleStaking struct {
	mock.Mock
}

func (m *MockFlexibleStaking) UserInfo(opts *bind.CallOpts, user common.Address) (staking.UserInfo, error) {
	args := m.Called(opts, user)
	return args.Get(0).(staking.UserInfo), args.Error(1)
}

func (m *MockFlexibleStaking) PendingRewards(opts *bind.CallOpts, user common.Address) (*big.Int, error) {
	args := m.Called(opts, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockFlexibleStaking) StakingToken(opts *bind.CallOpts) (common.Address, error) {
	args := m.Called(opts)
	return args.Get(0).(common.Address), args.Error(1)
}

func (m *MockFlexibleStaking) Stake(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *MockFlexibleStaking) Unstake(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *MockFlexibleStaking) ClaimRewards(opts *bind.TransactOpts) (*types.Transaction, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

type MockToken struct {
	mock.Mock
	TokenAddress common.Address
}

func (m *MockToken) Address() common.Address {
	return m.TokenAddress
}

func (m *MockToken) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	args := m.Called(opts, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockToken) Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error) {
	args := m.Called(opts, owner, spender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockToken) Symbol(opts *bind.CallOpts) (string, error) {
	args := m.Called(opts)
	return args.String(0), args.Error(1)
}

func (m *MockToken) Decimals(opts *bind.CallOpts) (uint8, error) {
	args := m.Called(opts)
	return args.Get(0).(uint8), args.Error(1)
}

func (m *MockToken) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, spender, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

// MockConfirmer returns receipts without a chain.
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

var (
	_ staking.FlexibleStaking = (*MockFlexibleStaking)(nil)
	_ staking.Token           = (*MockToken)(nil)
)
