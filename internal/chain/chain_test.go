package chain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftedinit/roadchain/internal/digest"
)

// tick returns a clock that advances one second per call.
func tick(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

var epoch = time.Date(2009, time.January, 3, 18, 15, 5, 0, time.UTC)

func build(t *testing.T, n int, opts ...Option) *Chain[string] {
	t.Helper()
	c := New[string](append([]Option{WithClock(tick(epoch))}, opts...)...)
	for i := 0; i < n; i++ {
		c.Append(fmt.Sprintf("event %d", i), "system")
	}
	return c
}

func TestScenarioABC(t *testing.T) {
	c := New[string]()
	for _, p := range []string{"A", "B", "C"} {
		c.Append(p, "")
	}

	require.Equal(t, 3, c.Len())
	assert.Equal(t, c.Genesis(), c.blocks[0].PreviousHash)
	assert.Equal(t, strings.Repeat("0", 64), c.blocks[0].PreviousHash)
	assert.Equal(t, c.blocks[0].Hash, c.blocks[1].PreviousHash)
	assert.Equal(t, c.blocks[1].Hash, c.blocks[2].PreviousHash)

	r := c.Verify()
	assert.True(t, r.Valid)
	assert.Equal(t, -1, r.FirstInvalid)
	assert.NoError(t, r.Err())

	c.blocks[1].Payload = "X"

	r = c.Verify()
	assert.False(t, r.Valid)
	assert.Equal(t, 1, r.FirstInvalid)
	assert.Equal(t, ReasonHash, r.Reason)
	assert.ErrorIs(t, r.Err(), ErrIntegrity)
	assert.EqualError(t, r.Err(), "block 1: hash mismatch: chain: integrity check failed")
}

func TestTamperDetection(t *testing.T) {
	const n = 8
	for k := 1; k < n; k++ {
		t.Run(fmt.Sprintf("block %d", k), func(t *testing.T) {
			c := build(t, n)
			require.True(t, c.Verify().Valid)

			c.blocks[k].Payload += "!"

			r := c.Verify()
			assert.False(t, r.Valid)
			assert.Equal(t, k, r.FirstInvalid)
		})
	}
}

func TestTamperFields(t *testing.T) {
	for name, tc := range map[string]struct {
		mutate func(b *Block[string])
		reason Reason
	}{
		"actor":     {func(b *Block[string]) { b.Actor = "mallory" }, ReasonHash},
		"timestamp": {func(b *Block[string]) { b.Timestamp = b.Timestamp.Add(time.Nanosecond) }, ReasonHash},
		"index":     {func(b *Block[string]) { b.Index = 7 }, ReasonIndex},
		"hash":      {func(b *Block[string]) { b.Hash = strings.Repeat("f", 64) }, ReasonHash},
	} {
		t.Run(name, func(t *testing.T) {
			c := build(t, 4)
			tc.mutate(&c.blocks[2])

			r := c.Verify()
			assert.False(t, r.Valid)
			assert.Equal(t, 2, r.FirstInvalid)
			assert.Equal(t, tc.reason, r.Reason)
		})
	}
}

func TestRehashedBlockBreaksLink(t *testing.T) {
	c := build(t, 4)

	// Recomputing the hash of a tampered block moves the failure to its successor.
	b := &c.blocks[1]
	b.Payload = "forged"
	h, err := b.ComputeHash(c.Digest())
	require.NoError(t, err)
	b.Hash = h

	r := c.Verify()
	assert.False(t, r.Valid)
	assert.Equal(t, 2, r.FirstInvalid)
	assert.Equal(t, ReasonLink, r.Reason)
}

func TestRemovedBlock(t *testing.T) {
	c := build(t, 4)
	c.blocks = append(c.blocks[:1], c.blocks[2:]...)

	r := c.Verify()
	assert.False(t, r.Valid)
	assert.Equal(t, 1, r.FirstInvalid)
	assert.Equal(t, ReasonIndex, r.Reason)
}

func TestGenesisTampering(t *testing.T) {
	c := build(t, 3)
	c.blocks[0].Payload = "rewritten history"

	r := c.Verify()
	assert.False(t, r.Valid)
	assert.Equal(t, 0, r.FirstInvalid)
}

func TestEmptyAndSingle(t *testing.T) {
	c := New[string]()
	assert.Equal(t, c.Genesis(), c.Head())
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Verify().Valid)

	b := c.Append("only", "")
	assert.Equal(t, b.Hash, c.Head())
	r := c.Verify()
	assert.True(t, r.Valid)
	assert.Equal(t, -1, r.FirstInvalid)
}

func TestSampleDetectsTampering(t *testing.T) {
	c := build(t, 50)
	rng := rand.New(rand.NewPCG(1, 2))

	res := c.Sample(100, rng)
	assert.Equal(t, 49, res.Checked)
	assert.Equal(t, "49/49", res.Rate())
	assert.True(t, res.Valid())

	c.blocks[10].Payload = "X"
	res = c.Sample(100, rng)
	assert.False(t, res.Valid())
	assert.Equal(t, []int{10}, res.Failed)

	res = c.Sample(5, rng)
	assert.Equal(t, 5, res.Checked)

	assert.Equal(t, SampleResult{}, New[string]().Sample(10, nil))
	assert.Zero(t, c.Sample(0, nil).Checked)
}

func TestDigestChoice(t *testing.T) {
	blake, err := digest.Lookup(digest.BLAKE2b256)
	require.NoError(t, err)

	a := build(t, 3)
	b := build(t, 3, WithDigest(blake))

	assert.True(t, b.Verify().Valid)
	assert.NotEqual(t, a.Head(), b.Head())
	assert.Equal(t, a.Genesis(), b.Genesis())

	// Blocks hashed with one digest do not verify under another.
	assert.False(t, Load(a.Blocks(), WithDigest(blake)).Verify().Valid)
}
