package roadchain

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/liftedinit/roadchain/internal/exporter"
	"github.com/liftedinit/roadchain/internal/models"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the chain to other formats",
}

var exportTSVCmd = &cobra.Command{
	Use:   "tsv [output-file]",
	Short: "Export the chain to a TSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer l.Close()

		blocks := l.Blocks()
		records := make([]models.Record, 0, len(blocks))
		for _, b := range blocks {
			r, err := b.Record()
			if err != nil {
				return err
			}
			records = append(records, r)
		}

		if err := exporter.ExportTSVFile(args[0], records); err != nil {
			return errors.WithMessage(err, "failed to export chain")
		}

		slog.Info("Chain exported", "blocks", len(records), "file", args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d blocks to %s\n", len(records), args[0])
		return nil
	},
}

func init() {
	exportCmd.AddCommand(exportTSVCmd)
}
