package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/internal/services"
	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/utils/cliutil"
	"github.com/edinar-labs/flexible-staking/internal/utils/contextutil"
	"github.com/edinar-labs/flexible-staking/internal/utils/unitutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

func NewBalanceCommand() *cobra.Command {
	return cliutil.CreateCommand(cliutil.CommandConfig{
		Use:   "balance",
		Short: "Check token balance, allowance and stake status",
		RunFunc: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			return withService(ctx, session.NopNotifier{}, func(ctx context.Context, cfg *config.Config, svc *services.StakingService) error {
				rctx, rcancel := contextutil.WithTimeout(ctx)
				defer rcancel()

				balance, err := svc.Session.Balance(rctx)
				if err != nil {
					return err
				}

				info, err := svc.Session.FetchUserInfo(rctx)
				if err != nil {
					return err
				}

				symbol := balance.Symbol
				if symbol == "" {
					symbol = tokenSymbol(cfg)
				}

				out := cmd.OutOrStdout()
				label := color.New(color.FgCyan).SprintFunc()

				printUserInfo(out, svc.Session.Address().Hex(), info, symbol)
				fmt.Fprintf(out, "%s %s\n", label("Token:          "), balance.Token.Hex())
				fmt.Fprintf(out, "%s %s %s\n", label("Balance:        "), unitutil.FormatEther(balance.Balance), symbol)
				fmt.Fprintf(out, "%s %s %s\n", label("Allowance:      "), unitutil.FormatEther(balance.Allowance), symbol)
				return nil
			})
		},
	}, logger.WithComponent("balance"))
}
