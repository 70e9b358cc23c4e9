package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/edinar-labs/flexible-staking/internal/utils/cliutil"
	"github.com/edinar-labs/flexible-staking/internal/utils/keystoreutil"
	"github.com/edinar-labs/flexible-staking/internal/utils/walletutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

func NewAuthCommand() *cobra.Command {
	log := logger.WithComponent("auth")

	return cliutil.CreateCommand(cliutil.CommandConfig{
		Use:   "auth",
		Short: "Store the wallet private key used to sign staking transactions",
		Flags: map[string]cliutil.Flag{
			"private-key": {
				Type:        cliutil.FlagTypeString,
				Shorthand:   "k",
				Description: "Private key in hex format",
				Required:    true,
			},
		},
		RunFunc: func(cmd *cobra.Command, args []string) error {
			privateKey, err := cmd.Flags().GetString("private-key")
			if err != nil {
				return fmt.Errorf("failed to get private key flag: %w", err)
			}
			return ExecuteAuth(privateKey)
		},
	}, log)
}

// ExecuteAuth validates privateKey and writes it to the keystore.
func ExecuteAuth(privateKey string) error {
	log := logger.WithComponent("auth")

	if privateKey == "" {
		return fmt.Errorf("private key is required")
	}

	key, err := walletutil.ParsePrivateKey(privateKey)
	if err != nil {
		return err
	}

	path, err := keystoreutil.SavePrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to save private key: %w", err)
	}

	log.Info().
		Str("address", crypto.PubkeyToAddress(key.PublicKey).Hex()).
		Str("keystore", path).
		Msg("Wallet authenticated successfully")

	return nil
}
