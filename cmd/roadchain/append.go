package roadchain

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/roadchain/internal/config"
)

const genesisActor = "0"

var appendCmd = &cobra.Command{
	Use:   "append [payload] [flags]",
	Short: "Append an event to the chain",
	Long: `Append an event to the chain and print the new block.
The payload is stored as a JSON string unless --json is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := jsonPayload(args[0], viper.GetBool("json"))
		if err != nil {
			return errors.WithMessage(err, "invalid payload")
		}

		l, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer l.Close()

		chainConfig := config.LoadChainConfigFromCLI()
		if chainConfig.Genesis {
			genesis, err := jsonPayload(chainConfig.GenesisPayload, false)
			if err != nil {
				return errors.WithMessage(err, "invalid genesis payload")
			}
			written, err := l.EnsureGenesis(cmd.Context(), genesis, genesisActor)
			if err != nil {
				return err
			}
			if written {
				slog.Info("Genesis block written")
			}
		}

		b, err := l.Append(cmd.Context(), payload, chainConfig.Actor)
		if err != nil {
			return errors.WithMessage(err, "failed to append block")
		}

		r, err := b.Record()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	appendCmd.Flags().StringP("actor", "a", "", "Actor recorded with the event")
	appendCmd.Flags().Bool("json", false, "Store the payload as a JSON document")
	appendCmd.Flags().Bool("genesis", false, "Write a genesis block first if the chain is empty")
	appendCmd.Flags().String("genesis-payload", "genesis", "Payload of the genesis block")

	if err := viper.BindPFlags(appendCmd.Flags()); err != nil {
		slog.Error("Failed to bind appendCmd flags", "error", err)
	}
}
