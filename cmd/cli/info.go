package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/internal/services"
	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/utils/cliutil"
	"github.com/edinar-labs/flexible-staking/internal/utils/contextutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

func NewInfoCommand() *cobra.Command {
	return cliutil.CreateCommand(cliutil.CommandConfig{
		Use:   "info",
		Short: "Show staked tokens and pending rewards",
		RunFunc: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			return withService(ctx, session.NopNotifier{}, func(ctx context.Context, cfg *config.Config, svc *services.StakingService) error {
				fctx, fcancel := contextutil.WithTimeout(ctx)
				defer fcancel()

				info, err := svc.Session.FetchUserInfo(fctx)
				if err != nil {
					return err
				}

				printUserInfo(cmd.OutOrStdout(), svc.Session.Address().Hex(), info, tokenSymbol(cfg))
				return nil
			})
		},
	}, logger.WithComponent("info"))
}

func printUserInfo(w io.Writer, address string, info session.UserInfo, symbol string) {
	label := color.New(color.FgCyan).SprintFunc()
	value := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", label("Wallet:         "), address)
	fmt.Fprintf(w, "%s %s %s\n", label("Staked:         "), value(info.StakedDisplay()), symbol)
	fmt.Fprintf(w, "%s %s %s\n", label("Pending rewards:"), value(info.PendingRewardsDisplay()), symbol)
}
