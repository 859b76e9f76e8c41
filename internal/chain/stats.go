package chain

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

// Stats summarizes a chain.
type Stats struct {
	TotalBlocks int
	First       time.Time
	Last        time.Time
	GenesisHash string
	TipHash     string
	// TimestampRegressions counts blocks older than their predecessor.
	TimestampRegressions int
}

// Stats computes summary statistics. All fields are zero for an empty chain.
func (c *Chain[T]) Stats() Stats {
	if len(c.blocks) == 0 {
		return Stats{}
	}
	s := Stats{
		TotalBlocks: len(c.blocks),
		First:       c.blocks[0].Timestamp,
		Last:        c.blocks[len(c.blocks)-1].Timestamp,
		GenesisHash: c.blocks[0].Hash,
		TipHash:     c.blocks[len(c.blocks)-1].Hash,
	}
	for i := 1; i < len(c.blocks); i++ {
		if c.blocks[i].Timestamp.Before(c.blocks[i-1].Timestamp) {
			s.TimestampRegressions++
		}
	}
	return s
}

// SampleResult is the outcome of a spot check.
type SampleResult struct {
	Checked int
	Total   int
	// Failed holds the indexes of sampled blocks that failed, in order.
	Failed []int
}

func (r SampleResult) Valid() bool {
	return len(r.Failed) == 0
}

// Rate renders the sample rate as checked/total.
func (r SampleResult) Rate() string {
	return fmt.Sprintf("%d/%d", r.Checked, r.Total)
}

// Sample checks up to n randomly chosen blocks after the first one, each
// against its own hash and its predecessor. It is a cheap spot check for long
// chains; only Verify proves integrity.
func (c *Chain[T]) Sample(n int, rng *rand.Rand) SampleResult {
	total := len(c.blocks) - 1
	if total < 1 || n <= 0 {
		return SampleResult{Total: max(total, 0)}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	picked := rng.Perm(total)[:min(n, total)]
	slices.Sort(picked)

	res := SampleResult{Checked: len(picked), Total: total}
	for _, p := range picked {
		i := p + 1
		if r := c.check(i, c.blocks[i], c.blocks[i-1].Hash); !r.Valid {
			res.Failed = append(res.Failed, i)
		}
	}
	return res
}
