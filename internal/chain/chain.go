package chain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/liftedinit/roadchain/internal/digest"
)

// Chain is an append only sequence of blocks.
type Chain[T any] struct {
	blocks  []Block[T]
	digest  digest.Digest
	clock   func() time.Time
	genesis string
}

// New creates an empty chain.
func New[T any](opts ...Option) *Chain[T] {
	o := newOptions(opts)
	return &Chain[T]{
		digest:  o.digest,
		clock:   o.clock,
		genesis: GenesisSentinel(o.digest),
	}
}

// Load creates a chain holding blocks as they are, for example after reading
// them from storage. The blocks are not validated; use Verify for that.
func Load[T any](blocks []Block[T], opts ...Option) *Chain[T] {
	c := New[T](opts...)
	c.blocks = slices.Clone(blocks)
	return c
}

// GenesisSentinel is the previous hash of the first block for digest d.
func GenesisSentinel(d digest.Digest) string {
	return strings.Repeat("0", 2*d.Size())
}

// Genesis returns the genesis sentinel of the chain.
func (c *Chain[T]) Genesis() string {
	return c.genesis
}

// Digest returns the hash function of the chain.
func (c *Chain[T]) Digest() digest.Digest {
	return c.digest
}

// Len returns the number of blocks.
func (c *Chain[T]) Len() int {
	return len(c.blocks)
}

// Head returns the hash of the last block, or the genesis sentinel when the
// chain is empty. It commits to the whole chain.
func (c *Chain[T]) Head() string {
	if len(c.blocks) == 0 {
		return c.genesis
	}
	return c.blocks[len(c.blocks)-1].Hash
}

// At returns the block with the given index.
func (c *Chain[T]) At(i int) (Block[T], error) {
	if i < 0 || i >= len(c.blocks) {
		return Block[T]{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(c.blocks))
	}
	return c.blocks[i], nil
}

// Blocks returns a copy of the blocks in order.
func (c *Chain[T]) Blocks() []Block[T] {
	return slices.Clone(c.blocks)
}

// Prepare builds the block that would be appended next without changing the
// chain. It panics if the payload cannot be JSON encoded.
func (c *Chain[T]) Prepare(payload T, actor string) Block[T] {
	b := Block[T]{
		Index:        len(c.blocks),
		PreviousHash: c.Head(),
		Timestamp:    c.clock().UTC().Round(0),
		Actor:        actor,
		Payload:      payload,
	}
	h, err := b.ComputeHash(c.digest)
	if err != nil {
		panic(fmt.Sprintf("chain: prepare block %d: %v", b.Index, err))
	}
	b.Hash = h
	return b
}

// Commit appends a block returned by Prepare. It fails if the block does not
// extend the current head, which happens when another block was committed in
// between or the block was modified.
func (c *Chain[T]) Commit(b Block[T]) error {
	if b.Index != len(c.blocks) {
		return fmt.Errorf("%w: got %d, want %d", ErrIndex, b.Index, len(c.blocks))
	}
	if b.PreviousHash != c.Head() {
		return fmt.Errorf("%w: block %d", ErrLink, b.Index)
	}
	h, err := b.ComputeHash(c.digest)
	if err != nil {
		return err
	}
	if h != b.Hash {
		return fmt.Errorf("%w: block %d", ErrHash, b.Index)
	}
	c.blocks = append(c.blocks, b)
	return nil
}

// Append adds a new block holding payload and returns it.
func (c *Chain[T]) Append(payload T, actor string) Block[T] {
	b := c.Prepare(payload, actor)
	// A freshly prepared block always extends the head.
	c.blocks = append(c.blocks, b)
	return b
}
