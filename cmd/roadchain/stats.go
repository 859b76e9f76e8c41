package roadchain

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/liftedinit/roadchain/internal/chain"
)

const (
	statsSampleSize = 100
	statsPreview    = 6
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer l.Close()

		out := cmd.OutOrStdout()
		if l.Len() == 0 {
			fmt.Fprintln(out, "Chain is empty")
			return nil
		}

		s := l.Stats()
		fmt.Fprintf(out, "Blocks:      %d\n", s.TotalBlocks)
		fmt.Fprintf(out, "First:       %s\n", chain.FormatTimestamp(s.First))
		fmt.Fprintf(out, "Last:        %s\n", chain.FormatTimestamp(s.Last))
		fmt.Fprintf(out, "Genesis:     %s\n", s.GenesisHash)
		fmt.Fprintf(out, "Tip:         %s\n", s.TipHash)
		if s.TimestampRegressions > 0 {
			fmt.Fprintf(out, "Regressions: %d\n", s.TimestampRegressions)
		}

		fmt.Fprintln(out)
		printBlocks(out, l.Blocks())

		fmt.Fprintln(out)
		printSample(out, l.Sample(statsSampleSize, nil))
		return nil
	},
}

// printBlocks prints the first blocks and the tip.
func printBlocks(w io.Writer, blocks []chain.Block[json.RawMessage]) {
	fmt.Fprintf(w, "%8s  %-12s  %-16s  %s\n", "Block", "Actor", "Hash prefix", "Payload")
	for i, b := range blocks {
		if i == statsPreview && len(blocks) > statsPreview+1 {
			fmt.Fprintf(w, "%8s\n", "...")
			b = blocks[len(blocks)-1]
		} else if i > statsPreview {
			break
		}
		fmt.Fprintf(w, "%8d  %-12s  %-16s  %s\n", b.Index, truncate(b.Actor, 12), truncate(b.Hash, 16), truncate(string(b.Payload), 30))
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
