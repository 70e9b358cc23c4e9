package cli

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/internal/services"
	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/utils/cliutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

var amountFlag = cliutil.Flag{
	Type:        cliutil.FlagTypeString,
	Shorthand:   "a",
	Description: "Amount in tokens, e.g. 1.5",
	Required:    true,
}

func NewApproveCommand() *cobra.Command {
	return newActionCommand(session.ActionApprove, "Approve the staking contract to spend tokens", nil)
}

func NewStakeCommand() *cobra.Command {
	return newActionCommand(session.ActionStake, "Stake tokens", map[string]cliutil.Flag{
		"approve": {
			Type:        cliutil.FlagTypeBool,
			Description: "Approve the amount first if the current allowance is too low",
		},
	})
}

func NewUnstakeCommand() *cobra.Command {
	return newActionCommand(session.ActionUnstake, "Withdraw staked tokens", nil)
}

func NewClaimCommand() *cobra.Command {
	return newActionCommand(session.ActionClaim, "Claim pending rewards", nil)
}

func newActionCommand(action session.Action, short string, extra map[string]cliutil.Flag) *cobra.Command {
	log := logger.WithComponent(string(action))

	flags := map[string]cliutil.Flag{}
	if action.NeedsAmount() {
		flags["amount"] = amountFlag
	}
	for name, flag := range extra {
		flags[name] = flag
	}

	return cliutil.CreateCommand(cliutil.CommandConfig{
		Use:   string(action),
		Short: short,
		Flags: flags,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			var amount string
			if action.NeedsAmount() {
				var err error
				if amount, err = cmd.Flags().GetString("amount"); err != nil {
					return err
				}
			}

			approveFirst := false
			if cmd.Flags().Lookup("approve") != nil {
				var err error
				if approveFirst, err = cmd.Flags().GetBool("approve"); err != nil {
					return err
				}
			}

			ctx, cancel := signalContext()
			defer cancel()

			return withService(ctx, session.NewConsoleNotifier(), func(ctx context.Context, cfg *config.Config, svc *services.StakingService) error {
				return ExecuteAction(ctx, svc.Session, action, amount, approveFirst)
			})
		},
	}, log)
}

// ActionRunner is what ExecuteAction needs from a session.
type ActionRunner interface {
	SetAmount(amount string)
	EnsureAllowance(ctx context.Context) (bool, error)
	Submit(ctx context.Context, action session.Action, amount string) (*types.Receipt, error)
}

// ExecuteAction runs one staking action, approving first when asked.
func ExecuteAction(ctx context.Context, s ActionRunner, action session.Action, amount string, approveFirst bool) error {
	log := logger.WithComponent(string(action))

	if approveFirst && action == session.ActionStake {
		s.SetAmount(amount)
		approved, err := s.EnsureAllowance(ctx)
		if err != nil {
			return fmt.Errorf("approval failed: %w", err)
		}
		if approved {
			log.Info().Str("amount", amount).Msg("Allowance updated")
		}
	}

	receipt, err := s.Submit(ctx, action, amount)
	if err != nil {
		return err
	}

	log.Info().
		Str("tx_hash", receipt.TxHash.Hex()).
		Msg("Done")
	return nil
}
