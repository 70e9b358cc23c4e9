package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Token represents the ERC20 methods used around staking
type Token interface {
	Address() common.Address
	BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error)
	Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error)
	Symbol(opts *bind.CallOpts) (string, error)
	Decimals(opts *bind.CallOpts) (uint8, error)

	Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error)
}

type TokenContract struct {
	address  common.Address
	contract *bind.BoundContract
	readOnly bool
}

func NewToken(address common.Address, backend bind.ContractBackend) (*TokenContract, error) {
	_, parsed, err := parsedABIs()
	if err != nil {
		return nil, err
	}

	return &TokenContract{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func NewTokenCaller(address common.Address, caller bind.ContractCaller) (*TokenContract, error) {
	_, parsed, err := parsedABIs()
	if err != nil {
		return nil, err
	}

	return &TokenContract{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, caller, nil, nil),
		readOnly: true,
	}, nil
}

func (t *TokenContract) Address() common.Address {
	return t.address
}

func (t *TokenContract) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(opts, &out, "balanceOf", account); err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (t *TokenContract) Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(opts, &out, "allowance", owner, spender); err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (t *TokenContract) Symbol(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	if err := t.contract.Call(opts, &out, "symbol"); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (t *TokenContract) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	if err := t.contract.Call(opts, &out, "decimals"); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// Approve lets spender move amount of the caller's tokens.
func (t *TokenContract) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	if t.readOnly {
		return nil, ErrReadOnly
	}
	return t.contract.Transact(opts, "approve", spender, amount)
}

var _ Token = (*TokenContract)(nil)
