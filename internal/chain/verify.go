package chain

// Reason tells which check a block failed.
type Reason string

const (
	ReasonNone   Reason = ""
	ReasonIndex  Reason = "index out of sequence"
	ReasonLink   Reason = "previous hash mismatch"
	ReasonHash   Reason = "hash mismatch"
	ReasonEncode Reason = "unencodable block"
)

// Result is the outcome of Verify. FirstInvalid is -1 for a valid chain.
type Result struct {
	Valid        bool
	FirstInvalid int
	Reason       Reason
}

// Err returns nil for a valid result and an *IntegrityError otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &IntegrityError{Index: r.FirstInvalid, Reason: r.Reason}
}

func valid() Result {
	return Result{Valid: true, FirstInvalid: -1}
}

func invalid(i int, reason Reason) Result {
	return Result{FirstInvalid: i, Reason: reason}
}

// Verify walks the chain from the first block and recomputes every hash and
// link. It stops at the first block that fails.
func (c *Chain[T]) Verify() Result {
	return c.VerifyFunc(nil)
}

// VerifyFunc is Verify with a callback invoked after each block that passed.
func (c *Chain[T]) VerifyFunc(progress func(index int)) Result {
	prev := c.genesis
	for i, b := range c.blocks {
		if r := c.check(i, b, prev); !r.Valid {
			return r
		}
		prev = b.Hash
		if progress != nil {
			progress(i)
		}
	}
	return valid()
}

// check validates block b at position i whose predecessor hash is prev.
func (c *Chain[T]) check(i int, b Block[T], prev string) Result {
	if b.Index != i {
		return invalid(i, ReasonIndex)
	}
	h, err := b.ComputeHash(c.digest)
	if err != nil {
		return invalid(i, ReasonEncode)
	}
	if h != b.Hash {
		return invalid(i, ReasonHash)
	}
	if b.PreviousHash != prev {
		return invalid(i, ReasonLink)
	}
	return valid()
}
