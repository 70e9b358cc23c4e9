package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edinar-labs/flexible-staking/cmd/cli"
	"github.com/edinar-labs/flexible-staking/internal/utils/configutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

var (
	logMode    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "edinar-staking",
	Short: "EDINAR flexible staking client",
	Long:  `Stake EDINAR tokens, withdraw them and claim rewards from the flexible staking contract`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitWithMode(logger.ParseMode(logMode))
		configutil.SetPath(configutil.ResolvePath(configPath))
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(cli.NewAuthCommand())
	rootCmd.AddCommand(cli.NewInfoCommand())
	rootCmd.AddCommand(cli.NewWatchCommand())
	rootCmd.AddCommand(cli.NewApproveCommand())
	rootCmd.AddCommand(cli.NewStakeCommand())
	rootCmd.AddCommand(cli.NewUnstakeCommand())
	rootCmd.AddCommand(cli.NewClaimCommand())
	rootCmd.AddCommand(cli.NewBalanceCommand())
	rootCmd.AddCommand(cli.NewDashboardCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log", "pretty", "Log mode: debug, pretty, info, prod, test")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the .env config file (defaults to $"+configutil.EnvConfigPath+" or ./.env)")
}
