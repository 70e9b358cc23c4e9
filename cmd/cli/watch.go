package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/internal/services"
	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/utils/cliutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

func NewWatchCommand() *cobra.Command {
	return cliutil.CreateCommand(cliutil.CommandConfig{
		Use:     "watch",
		Short:   "Print staked tokens and pending rewards on every poll",
		Example: "  edinar-staking watch --interval 10s",
		Flags: map[string]cliutil.Flag{
			"interval": {
				Type:        cliutil.FlagTypeDuration,
				Shorthand:   "i",
				Description: "Poll interval (defaults to STAKING_POLL_INTERVAL)",
			},
		},
		RunFunc: func(cmd *cobra.Command, args []string) error {
			interval, err := cmd.Flags().GetDuration("interval")
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			return withService(ctx, session.NopNotifier{}, func(ctx context.Context, cfg *config.Config, svc *services.StakingService) error {
				poller := svc.Poller
				if interval > 0 {
					poller = session.NewPoller(svc.Session, interval)
					defer poller.Stop()
				}

				symbol := tokenSymbol(cfg)
				address := svc.Session.Address().Hex()
				out := cmd.OutOrStdout()

				unsubscribe := svc.Session.Subscribe(func(info session.UserInfo) {
					printUserInfo(out, address, info, symbol)
				})
				defer unsubscribe()

				if err := poller.Start(ctx); err != nil {
					return err
				}

				log := logger.WithComponent("watch")
				log.Info().
					Str("interval", poller.Interval().String()).
					Msg("Watching user info - press Ctrl+C to stop")

				<-ctx.Done()
				return nil
			})
		},
	}, logger.WithComponent("watch"))
}
