package chain

import (
	"time"

	"github.com/liftedinit/roadchain/internal/digest"
)

type options struct {
	digest digest.Digest
	clock  func() time.Time
}

// Option configures a Chain.
type Option func(*options)

// WithDigest sets the hash function. The default is SHA-256.
func WithDigest(d digest.Digest) Option {
	return func(o *options) {
		if !d.IsZero() {
			o.digest = d
		}
	}
}

// WithClock sets the source of block timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		digest: digest.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
