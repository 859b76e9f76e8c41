package roadchain

import (
	"fmt"

	"github.com/spf13/cobra"
)

var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Print the hash of the last block",
	Long: `Print the hash of the last block, which commits to the whole chain.
An empty chain prints the genesis sentinel.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer l.Close()

		fmt.Fprintln(cmd.OutOrStdout(), l.Head())
		return nil
	},
}
