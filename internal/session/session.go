package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/edinar-labs/flexible-staking/internal/telemetry"
	"github.com/edinar-labs/flexible-staking/internal/utils/contextutil"
	"github.com/edinar-labs/flexible-staking/internal/utils/errorutil"
	"github.com/edinar-labs/flexible-staking/internal/utils/unitutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
	"github.com/edinar-labs/flexible-staking/pkg/staking"
)

var (
	ErrNotConnected        = errors.New("wallet not connected")
	ErrEmptyAmount         = errors.New("amount is empty")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrUnknownAction       = errors.New("unknown action")
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionStake   Action = "stake"
	ActionUnstake Action = "unstake"
	ActionClaim   Action = "claim"
)

// ParseAction maps a user-supplied name to an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(s)); a {
	case ActionApprove, ActionStake, ActionUnstake, ActionClaim:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// NeedsAmount reports whether the action reads the amount input.
func (a Action) NeedsAmount() bool {
	return a != ActionClaim
}

// Confirmer waits for a transaction to be mined.
type Confirmer interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Deps wires a session to a connected wallet.
type Deps struct {
	Address         common.Address
	ContractAddress common.Address
	Contract        staking.FlexibleStaking
	Signer          func(ctx context.Context) *bind.TransactOpts
	Confirmer       Confirmer
	BindToken       func(address common.Address) (staking.Token, error)
	Notifier        Notifier
	ConfirmTimeout  time.Duration
}

// UserInfo is the last successfully read stake state of the wallet.
type UserInfo struct {
	Staked         *big.Int
	PendingRewards *big.Int
	UpdatedAt      time.Time
}

func (u UserInfo) StakedDisplay() string {
	return unitutil.FormatEther(u.Staked)
}

func (u UserInfo) PendingRewardsDisplay() string {
	return unitutil.FormatEther(u.PendingRewards)
}

// TokenBalance describes the wallet's holdings of the staking token.
type TokenBalance struct {
	Token     common.Address
	Symbol    string
	Balance   *big.Int
	Allowance *big.Int
}

// Session holds the state of one connected wallet and runs staking actions against it.
// Actions are serialized; reads may run concurrently with an action.
type Session struct {
	address         common.Address
	contractAddress common.Address
	contract        staking.FlexibleStaking
	signer          func(ctx context.Context) *bind.TransactOpts
	confirmer       Confirmer
	bindToken       func(address common.Address) (staking.Token, error)
	notifier        Notifier
	confirmTimeout  time.Duration
	log             zerolog.Logger

	actionMu sync.Mutex

	mu          sync.RWMutex
	amount      string
	info        UserInfo
	subscribers map[int]func(UserInfo)
	nextSubID   int
}

func New(deps Deps) *Session {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Session{
		address:         deps.Address,
		contractAddress: deps.ContractAddress,
		contract:        deps.Contract,
		signer:          deps.Signer,
		confirmer:       deps.Confirmer,
		bindToken:       deps.BindToken,
		notifier:        notifier,
		confirmTimeout:  deps.ConfirmTimeout,
		log:             logger.WithComponent("session").With().Str("wallet", deps.Address.Hex()).Logger(),
		info: UserInfo{
			Staked:         new(big.Int),
			PendingRewards: new(big.Int),
		},
		subscribers: make(map[int]func(UserInfo)),
	}
}

func (s *Session) Connected() bool {
	return s != nil && s.contract != nil && s.address != (common.Address{})
}

func (s *Session) Address() common.Address {
	return s.address
}

func (s *Session) ContractAddress() common.Address {
	return s.contractAddress
}

func (s *Session) SetAmount(amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amount = strings.TrimSpace(amount)
}

func (s *Session) Amount() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.amount
}

// UserInfo returns the display values from the last successful read.
func (s *Session) UserInfo() UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyInfo(s.info)
}

// Subscribe registers fn to receive every successful user info read.
func (s *Session) Subscribe(fn func(UserInfo)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// FetchUserInfo reads userInfo(wallet). A failed read keeps the previous values.
func (s *Session) FetchUserInfo(ctx context.Context) (UserInfo, error) {
	if !s.Connected() {
		return UserInfo{}, ErrNotConnected
	}

	result, err := s.contract.UserInfo(&bind.CallOpts{Context: ctx, From: s.address}, s.address)
	if err != nil {
		telemetry.RecordPoll("error")
		s.log.Error().Err(err).Msg("Error fetching user info")
		return s.UserInfo(), errorutil.WrapError(err, "failed to fetch user info")
	}

	info := UserInfo{
		Staked:         nonNil(result.Staked),
		PendingRewards: nonNil(result.PendingRewards),
		UpdatedAt:      time.Now(),
	}

	s.mu.Lock()
	s.info = info
	subscribers := make([]func(UserInfo), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	telemetry.RecordPoll("success")
	telemetry.RecordUserInfo(info.Staked, info.PendingRewards)

	s.log.Debug().
		Str("staked", info.StakedDisplay()).
		Str("pending_rewards", info.PendingRewardsDisplay()).
		Msg("User info refreshed")

	for _, fn := range subscribers {
		fn(copyInfo(info))
	}

	return copyInfo(info), nil
}

// Submit sets the amount input (for actions that use it) and runs action.
func (s *Session) Submit(ctx context.Context, action Action, amount string) (*types.Receipt, error) {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	if action.NeedsAmount() {
		s.SetAmount(amount)
	}
	return s.run(ctx, action)
}

func (s *Session) Approve(ctx context.Context) (*types.Receipt, error) {
	return s.lockedRun(ctx, ActionApprove)
}

func (s *Session) Stake(ctx context.Context) (*types.Receipt, error) {
	return s.lockedRun(ctx, ActionStake)
}

func (s *Session) Unstake(ctx context.Context) (*types.Receipt, error) {
	return s.lockedRun(ctx, ActionUnstake)
}

func (s *Session) Claim(ctx context.Context) (*types.Receipt, error) {
	return s.lockedRun(ctx, ActionClaim)
}

func (s *Session) lockedRun(ctx context.Context, action Action) (*types.Receipt, error) {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()
	return s.run(ctx, action)
}

func (s *Session) run(ctx context.Context, action Action) (*types.Receipt, error) {
	if !s.Connected() {
		return nil, ErrNotConnected
	}

	switch action {
	case ActionApprove:
		return s.approve(ctx)
	case ActionStake:
		return s.stakeOrUnstake(ctx, ActionStake, s.contract.Stake)
	case ActionUnstake:
		return s.stakeOrUnstake(ctx, ActionUnstake, s.contract.Unstake)
	case ActionClaim:
		return s.claim(ctx)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// EnsureAllowance approves the amount input only if the current allowance is short.
func (s *Session) EnsureAllowance(ctx context.Context) (bool, error) {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	amount, err := s.amountWei()
	if err != nil {
		return false, s.guardError(ActionApprove, err)
	}

	token, err := s.token(ctx)
	if err != nil {
		return false, s.fail(ActionApprove, err)
	}

	allowance, err := token.Allowance(&bind.CallOpts{Context: ctx}, s.address, s.contractAddress)
	if err != nil {
		return false, s.fail(ActionApprove, errorutil.WrapError(err, "failed to read allowance"))
	}

	if allowance.Cmp(amount) >= 0 {
		s.log.Info().
			Str("allowance", unitutil.FormatEther(allowance)).
			Msg("Allowance already covers amount")
		return false, nil
	}

	if _, err := s.approve(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Balance reads the wallet's token balance and its allowance for the staking contract.
func (s *Session) Balance(ctx context.Context) (TokenBalance, error) {
	if !s.Connected() {
		return TokenBalance{}, ErrNotConnected
	}

	token, err := s.token(ctx)
	if err != nil {
		return TokenBalance{}, err
	}

	opts := &bind.CallOpts{Context: ctx}

	balance, err := token.BalanceOf(opts, s.address)
	if err != nil {
		return TokenBalance{}, errorutil.WrapError(err, "failed to read token balance")
	}

	allowance, err := token.Allowance(opts, s.address, s.contractAddress)
	if err != nil {
		return TokenBalance{}, errorutil.WrapError(err, "failed to read allowance")
	}

	symbol, err := token.Symbol(opts)
	if err != nil {
		s.log.Debug().Err(err).Msg("Token has no symbol")
	}

	return TokenBalance{
		Token:     token.Address(),
		Symbol:    symbol,
		Balance:   balance,
		Allowance: allowance,
	}, nil
}

func (s *Session) approve(ctx context.Context) (*types.Receipt, error) {
	amount, err := s.amountWei()
	if err != nil {
		return nil, s.guardError(ActionApprove, err)
	}

	token, err := s.token(ctx)
	if err != nil {
		return nil, s.fail(ActionApprove, err)
	}

	receipt, err := s.transact(ctx, ActionApprove, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return token.Approve(opts, s.contractAddress, amount)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Success(ActionApprove, successMessage(ActionApprove))
	return receipt, nil
}

func (s *Session) stakeOrUnstake(
	ctx context.Context,
	action Action,
	send func(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error),
) (*types.Receipt, error) {
	amount, err := s.amountWei()
	if err != nil {
		return nil, s.guardError(action, err)
	}

	receipt, err := s.transact(ctx, action, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return send(opts, amount)
	})
	if err != nil {
		return nil, err
	}

	s.SetAmount("")
	s.refresh(ctx)
	s.notifier.Success(action, successMessage(action))
	return receipt, nil
}

func (s *Session) claim(ctx context.Context) (*types.Receipt, error) {
	if !s.Connected() {
		return nil, ErrNotConnected
	}

	receipt, err := s.transact(ctx, ActionClaim, s.contract.ClaimRewards)
	if err != nil {
		return nil, err
	}

	s.refresh(ctx)
	s.notifier.Success(ActionClaim, successMessage(ActionClaim))
	return receipt, nil
}

// transact submits one transaction and waits for a successful receipt.
func (s *Session) transact(
	ctx context.Context,
	action Action,
	send func(opts *bind.TransactOpts) (*types.Transaction, error),
) (*types.Receipt, error) {
	ctx, span := telemetry.StartSpan(ctx, "session."+string(action))
	defer span.End()

	ctx, cancel := contextutil.WithCustomTimeout(ctx, s.confirmTimeout)
	defer cancel()

	tx, err := send(s.signer(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		return nil, s.fail(action, errorutil.WrapError(err, "failed to submit %s transaction", action))
	}

	span.SetAttributes(attribute.String("tx_hash", tx.Hash().Hex()))
	s.log.Info().
		Str("action", string(action)).
		Str("tx_hash", tx.Hash().Hex()).
		Msg("Transaction submitted - waiting for confirmation...")

	// A broadcast transaction mines whether or not the caller is still around.
	ctx, cancelWait := contextutil.WithCustomTimeout(context.WithoutCancel(ctx), s.confirmTimeout)
	defer cancelWait()

	start := time.Now()
	receipt, err := s.confirmer.WaitMined(ctx, tx)
	if err != nil {
		telemetry.RecordConfirmation(ctx, string(action), "error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirmation failed")
		return nil, s.fail(action, errorutil.WrapError(err, "failed to confirm %s transaction %s", action, tx.Hash().Hex()))
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		telemetry.RecordConfirmation(ctx, string(action), "reverted", time.Since(start))
		span.SetStatus(codes.Error, "reverted")
		return nil, s.fail(action, fmt.Errorf("%w: %s", ErrTransactionReverted, tx.Hash().Hex()))
	}

	telemetry.RecordConfirmation(ctx, string(action), "success", time.Since(start))

	event := s.log.Info().
		Str("action", string(action)).
		Str("tx_hash", tx.Hash().Hex())
	if receipt.BlockNumber != nil {
		event = event.Uint64("block_number", receipt.BlockNumber.Uint64())
	}
	event.Msg("Transaction confirmed")

	return receipt, nil
}

func (s *Session) token(ctx context.Context) (staking.Token, error) {
	tokenAddr, err := s.contract.StakingToken(&bind.CallOpts{Context: ctx})
	if err != nil {
		return nil, errorutil.WrapError(err, "failed to read staking token")
	}

	token, err := s.bindToken(tokenAddr)
	if err != nil {
		return nil, errorutil.WrapError(err, "failed to bind token %s", tokenAddr.Hex())
	}
	return token, nil
}

// amountWei validates the session before parsing the amount input.
func (s *Session) amountWei() (*big.Int, error) {
	if !s.Connected() {
		return nil, ErrNotConnected
	}

	amount := s.Amount()
	if amount == "" {
		return nil, ErrEmptyAmount
	}

	return unitutil.ParseEther(amount)
}

// guardError passes through the silent guards and alerts on anything else.
func (s *Session) guardError(action Action, err error) error {
	if errors.Is(err, ErrNotConnected) || errors.Is(err, ErrEmptyAmount) {
		s.log.Debug().Err(err).Str("action", string(action)).Msg("Action skipped")
		return err
	}
	return s.fail(action, err)
}

func (s *Session) fail(action Action, err error) error {
	s.log.Error().Err(err).Str("action", string(action)).Msg(failureMessage(action))
	s.notifier.Failure(action, err)
	return err
}

func (s *Session) refresh(ctx context.Context) {
	rctx, cancel := contextutil.WithShortTimeout(context.WithoutCancel(ctx))
	defer cancel()

	// errors are already logged and the previous values kept
	_, _ = s.FetchUserInfo(rctx)
}

func copyInfo(info UserInfo) UserInfo {
	return UserInfo{
		Staked:         new(big.Int).Set(nonNil(info.Staked)),
		PendingRewards: new(big.Int).Set(nonNil(info.PendingRewards)),
		UpdatedAt:      info.UpdatedAt,
	}
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
