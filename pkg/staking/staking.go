package staking

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrReadOnly = errors.New("contract binding has no transactor")

// UserInfo is the result of userInfo(address) on the staking contract.
type UserInfo struct {
	Staked         *big.Int
	PendingRewards *big.Int
}

// FlexibleStaking represents the staking contract interface
type FlexibleStaking interface {
	// Read-only methods
	UserInfo(opts *bind.CallOpts, user common.Address) (UserInfo, error)
	PendingRewards(opts *bind.CallOpts, user common.Address) (*big.Int, error)
	StakingToken(opts *bind.CallOpts) (common.Address, error)

	// Transaction methods
	Stake(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	Unstake(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	ClaimRewards(opts *bind.TransactOpts) (*types.Transaction, error)
}

// FlexibleStakingContract is the Go binding of the FlexibleStaking contract
type FlexibleStakingContract struct {
	address  common.Address
	contract *bind.BoundContract
	readOnly bool
}

// NewFlexibleStaking binds the contract at address for both reads and transactions.
func NewFlexibleStaking(address common.Address, backend bind.ContractBackend) (*FlexibleStakingContract, error) {
	parsed, _, err := parsedABIs()
	if err != nil {
		return nil, err
	}

	return &FlexibleStakingContract{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// NewFlexibleStakingCaller binds the contract for reads only.
func NewFlexibleStakingCaller(address common.Address, caller bind.ContractCaller) (*FlexibleStakingContract, error) {
	parsed, _, err := parsedABIs()
	if err != nil {
		return nil, err
	}

	return &FlexibleStakingContract{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, caller, nil, nil),
		readOnly: true,
	}, nil
}

func (c *FlexibleStakingContract) Address() common.Address {
	return c.address
}

func (c *FlexibleStakingContract) UserInfo(opts *bind.CallOpts, user common.Address) (UserInfo, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "userInfo", user); err != nil {
		return UserInfo{}, err
	}

	return UserInfo{
		Staked:         abi.ConvertType(out[0], new(big.Int)).(*big.Int),
		PendingRewards: abi.ConvertType(out[1], new(big.Int)).(*big.Int),
	}, nil
}

func (c *FlexibleStakingContract) PendingRewards(opts *bind.CallOpts, user common.Address) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "pendingRewards", user); err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// StakingToken returns the ERC20 token the contract accepts.
func (c *FlexibleStakingContract) StakingToken(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "stakingToken"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (c *FlexibleStakingContract) Stake(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return c.transact(opts, "stake", amount)
}

func (c *FlexibleStakingContract) Unstake(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return c.transact(opts, "unstake", amount)
}

func (c *FlexibleStakingContract) ClaimRewards(opts *bind.TransactOpts) (*types.Transaction, error) {
	return c.transact(opts, "claimRewards")
}

func (c *FlexibleStakingContract) transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	if c.readOnly {
		return nil, ErrReadOnly
	}
	return c.contract.Transact(opts, method, params...)
}

var _ FlexibleStaking = (*FlexibleStakingContract)(nil)
