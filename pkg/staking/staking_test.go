package staking

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	contractAddr = common.HexToAddress("0x1234567890123456789012345678901234567890")
	userAddr     = common.HexToAddress("0x0987654321098765432109876543210987654321")
	tokenAddr    = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

// fakeCaller answers eth_call by method selector with pre-packed outputs.
type fakeCaller struct {
	parsed    abi.ABI
	responses map[string][]interface{}
	err       error
	lastCall  ethereum.CallMsg
}

func (f *fakeCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.lastCall = call
	if f.err != nil {
		return nil, f.err
	}
	for name, values := range f.responses {
		method := f.parsed.Methods[name]
		if bytes.Equal(call.Data[:4], method.ID) {
			return method.Outputs.Pack(values...)
		}
	}
	return nil, errors.New("unexpected call")
}

func newFakeCaller(t *testing.T, token bool, responses map[string][]interface{}) *fakeCaller {
	t.Helper()
	stakingParsed, tokenParsed, err := parsedABIs()
	require.NoError(t, err)

	parsed := stakingParsed
	if token {
		parsed = tokenParsed
	}
	return &fakeCaller{parsed: parsed, responses: responses}
}

func TestFlexibleStaking_Reads(t *testing.T) {
	staked := big.NewInt(3e18)
	rewards := big.NewInt(125e15)

	caller := newFakeCaller(t, false, map[string][]interface{}{
		"userInfo":       {staked, rewards},
		"pendingRewards": {rewards},
		"stakingToken":   {tokenAddr},
	})

	fs, err := NewFlexibleStakingCaller(contractAddr, caller)
	require.NoError(t, err)
	assert.Equal(t, contractAddr, fs.Address())

	t.Run("UserInfo", func(t *testing.T) {
		info, err := fs.UserInfo(&bind.CallOpts{}, userAddr)
		require.NoError(t, err)
		assert.Equal(t, 0, staked.Cmp(info.Staked))
		assert.Equal(t, 0, rewards.Cmp(info.PendingRewards))
		assert.Equal(t, contractAddr, *caller.lastCall.To)
	})

	t.Run("PendingRewards", func(t *testing.T) {
		got, err := fs.PendingRewards(nil, userAddr)
		require.NoError(t, err)
		assert.Equal(t, 0, rewards.Cmp(got))
	})

	t.Run("StakingToken", func(t *testing.T) {
		got, err := fs.StakingToken(&bind.CallOpts{})
		require.NoError(t, err)
		assert.Equal(t, tokenAddr, got)
	})
}

func TestFlexibleStaking_CallError(t *testing.T) {
	caller := newFakeCaller(t, false, nil)
	caller.err = errors.New("connection refused")

	fs, err := NewFlexibleStakingCaller(contractAddr, caller)
	require.NoError(t, err)

	_, err = fs.UserInfo(&bind.CallOpts{}, userAddr)
	assert.ErrorContains(t, err, "connection refused")
}

func TestFlexibleStaking_ReadOnlyTransactions(t *testing.T) {
	fs, err := NewFlexibleStakingCaller(contractAddr, newFakeCaller(t, false, nil))
	require.NoError(t, err)

	_, err = fs.Stake(&bind.TransactOpts{}, big.NewInt(1))
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = fs.Unstake(&bind.TransactOpts{}, big.NewInt(1))
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = fs.ClaimRewards(&bind.TransactOpts{})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestToken_Reads(t *testing.T) {
	caller := newFakeCaller(t, true, map[string][]interface{}{
		"balanceOf": {big.NewInt(7e18)},
		"allowance": {big.NewInt(1e18)},
		"symbol":    {"EDINAR"},
		"decimals":  {uint8(18)},
	})

	token, err := NewTokenCaller(tokenAddr, caller)
	require.NoError(t, err)

	balance, err := token.BalanceOf(&bind.CallOpts{}, userAddr)
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(7e18).Cmp(balance))

	allowance, err := token.Allowance(&bind.CallOpts{}, userAddr, contractAddr)
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(1e18).Cmp(allowance))

	symbol, err := token.Symbol(&bind.CallOpts{})
	require.NoError(t, err)
	assert.Equal(t, "EDINAR", symbol)

	decimals, err := token.Decimals(&bind.CallOpts{})
	require.NoError(t, err)
	assert.Equal(t, uint8(18), decimals)

	_, err = token.Approve(&bind.TransactOpts{}, contractAddr, big.NewInt(1))
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestABIEncoding(t *testing.T) {
	stakingParsed, tokenParsed, err := parsedABIs()
	require.NoError(t, err)

	for _, name := range []string{"stake", "unstake", "claimRewards", "userInfo", "pendingRewards", "stakingToken"} {
		_, ok := stakingParsed.Methods[name]
		assert.True(t, ok, name)
	}

	data, err := stakingParsed.Pack("stake", big.NewInt(1e18))
	require.NoError(t, err)
	assert.Len(t, data, 4+32)

	data, err = tokenParsed.Pack("approve", contractAddr, big.NewInt(1e18))
	require.NoError(t, err)
	assert.Len(t, data, 4+64)
}

type failingStaking struct {
	FlexibleStaking
}

func (failingStaking) UserInfo(opts *bind.CallOpts, user common.Address) (UserInfo, error) {
	return UserInfo{}, errors.New("boom")
}

func TestMetricsFlexibleStaking(t *testing.T) {
	wrapped := NewMetricsFlexibleStaking(failingStaking{})
	_, err := wrapped.UserInfo(&bind.CallOpts{}, userAddr)
	assert.EqualError(t, err, "boom")
}
