package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/edinar-labs/flexible-staking/internal/api"
	"github.com/edinar-labs/flexible-staking/internal/api/handlers"
	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/internal/monitoring/health"
	"github.com/edinar-labs/flexible-staking/internal/server"
	"github.com/edinar-labs/flexible-staking/internal/services"
	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/utils/cliutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	// missed polls before user info counts as stale
	staleAfter = 3
)

func NewDashboardCommand() *cobra.Command {
	return cliutil.CreateCommand(cliutil.CommandConfig{
		Use:   "dashboard",
		Short: "Serve the staking dashboard API with live updates",
		Flags: map[string]cliutil.Flag{
			"host": {
				Type:        cliutil.FlagTypeString,
				Description: "Listen host (defaults to DASHBOARD_HOST)",
			},
			"port": {
				Type:        cliutil.FlagTypeInt,
				Shorthand:   "p",
				Description: "Listen port (defaults to DASHBOARD_PORT)",
			},
		},
		RunFunc: func(cmd *cobra.Command, args []string) error {
			host, err := cmd.Flags().GetString("host")
			if err != nil {
				return err
			}
			port, err := cmd.Flags().GetInt("port")
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			hub := handlers.NewHub()
			notifier := session.MultiNotifier{session.NewConsoleNotifier(), hub}

			return withService(ctx, notifier, func(ctx context.Context, cfg *config.Config, svc *services.StakingService) error {
				dashboard := cfg.Dashboard
				if host != "" {
					dashboard.Host = host
				}
				if port > 0 {
					dashboard.Port = port
				}
				return runDashboard(ctx, dashboard, svc, hub)
			})
		},
	}, logger.WithComponent("dashboard"))
}

func runDashboard(ctx context.Context, cfg config.DashboardConfig, svc *services.StakingService, hub *handlers.Hub) error {
	log := logger.WithComponent("dashboard")

	stakingHandler := handlers.NewStakingHandler(svc.Session, hub)
	defer stakingHandler.Close()

	checker := health.NewHealthChecker(0)
	checker.Register("rpc", health.RPCCheck(svc.Wallet))
	checker.Register("user_info", health.FreshnessCheck(func() time.Time {
		return svc.Session.UserInfo().UpdatedAt
	}, staleAfter*svc.Poller.Interval()))

	if err := svc.Poller.Start(ctx); err != nil {
		return err
	}

	srv := server.NewServer(cfg, api.NewRouter(stakingHandler, checker, cfg.Endpoint))
	if err := srv.Listen(); err != nil {
		return err
	}

	checker.Start(ctx)
	defer checker.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve()
	}()

	log.Info().
		Str("address", srv.Addr()).
		Str("endpoint", cfg.Endpoint).
		Str("wallet", svc.Session.Address().Hex()).
		Msg("Dashboard ready")

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received, gracefully shutting down...")
	case serveErr = <-errCh:
	}

	svc.Poller.Stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, err)
	}

	log.Info().Msg("Shutdown complete")
	return serveErr
}
