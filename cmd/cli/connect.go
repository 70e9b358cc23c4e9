package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/internal/services"
	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/telemetry"
	"github.com/edinar-labs/flexible-staking/internal/utils/configutil"
	"github.com/edinar-labs/flexible-staking/internal/utils/contextutil"
	"github.com/edinar-labs/flexible-staking/internal/utils/errorutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withService loads the config, starts tracing, connects the wallet and runs fn.
// Everything is torn down when fn returns.
func withService(
	ctx context.Context,
	notifier session.Notifier,
	fn func(ctx context.Context, cfg *config.Config, svc *services.StakingService) error,
) error {
	log := logger.WithComponent("cli")

	cfg, err := configutil.GetConfig()
	if err != nil {
		return err
	}

	shutdown, err := telemetry.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		log.Warn().Err(err).Msg("Tracing disabled")
		shutdown = func(context.Context) error { return nil }
	}
	defer func() {
		sctx, cancel := contextutil.WithShortTimeout(context.Background())
		defer cancel()
		errorutil.HandleError(log, shutdown(sctx), "Telemetry shutdown failed")
	}()

	connectCtx, cancel := contextutil.WithTimeout(ctx)
	svc, err := services.Connect(connectCtx, cfg, notifier)
	cancel()
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(ctx, cfg, svc)
}

func tokenSymbol(cfg *config.Config) string {
	if cfg.Blockchain.TokenSymbol == "" {
		return config.DefaultTokenSymbol
	}
	return cfg.Blockchain.TokenSymbol
}
