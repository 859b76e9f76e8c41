package roadchain

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/roadchain/internal/chain"
	"github.com/liftedinit/roadchain/internal/digest"
)

const bitcoinGenesisHash = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"

// demoEvent is a transfer between two parties. The sender is the block actor.
type demoEvent struct {
	Recipient string `json:"recipient"`
	Data      string `json:"data"`
}

var demoEvents = []struct {
	sender string
	event  demoEvent
}{
	{"0", demoEvent{"genesis", "genesis"}},
	{"satoshi", demoEvent{"satoshi", "BTC_BRIDGE: " + bitcoinGenesisHash}},
	{"satoshi", demoEvent{"hal_finney", "First Bitcoin transaction: 10 BTC"}},
	{"time", demoEvent{"time", "Bitcoin Block 170: first confirmed transaction"}},
	{"alexa", demoEvent{"alexa", "RoadChain initialized, personal witness chain"}},
}

var demoStart = time.Date(2026, time.February, 21, 0, 0, 0, 0, time.UTC)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build a synthetic chain and show how tampering is detected",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		d := digest.Select(viper.GetString("digest"))

		c := buildDemoChain(d)
		fmt.Fprintf(out, "Synthetic chain (%s):\n\n", d)
		fmt.Fprintf(out, "%6s  %-10s  %-12s  %s\n", "Block", "From", "To", "Data")
		for _, b := range c.Blocks() {
			fmt.Fprintf(out, "%6d  %-10s  %-12s  %s\n", b.Index, b.Actor, b.Payload.Recipient, truncate(b.Payload.Data, 30))
		}
		fmt.Fprintln(out)
		printResult(out, "chain", c.Len(), c.Verify())
		fmt.Fprintf(out, "head: %s\n\n", c.Head())

		if err := printAvalanche(out, d, "January 3, 2009", "January 4, 2009"); err != nil {
			return err
		}

		blocks := c.Blocks()
		blocks[2].Payload.Data = "First Bitcoin transaction: 1000 BTC"
		fmt.Fprintf(out, "\nAfter tampering with block 2:\n")
		printResult(out, "chain", len(blocks), chain.Load(blocks, chain.WithDigest(d)).Verify())
		return nil
	},
}

// buildDemoChain builds the synthetic chain with one block per hour from
// demoStart, so its hashes are reproducible.
func buildDemoChain(d digest.Digest) *chain.Chain[demoEvent] {
	next := demoStart
	clock := func() time.Time {
		t := next
		next = next.Add(time.Hour)
		return t
	}

	c := chain.New[demoEvent](chain.WithDigest(d), chain.WithClock(clock))
	for _, e := range demoEvents {
		c.Append(e.event, e.sender)
	}
	return c
}

func printAvalanche(w io.Writer, d digest.Digest, a, b string) error {
	ha, hb := d.Sum([]byte(a)), d.Sum([]byte(b))
	s, err := digest.Avalanche(ha, hb)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s(%q) = %s\n", d, a, ha)
	fmt.Fprintf(w, "%s(%q) = %s\n", d, b, hb)
	fmt.Fprintf(w, "Characters differing: %d/%d (%.0f%%)\n", s.HexDiffering, s.HexChars, s.HexRatio()*100)
	fmt.Fprintf(w, "Bits flipped: %d/%d (%.0f%%)\n", s.BitsFlipped, s.Bits, s.BitRatio()*100)
	return nil
}
