// Package digest provides the hash functions a chain can be configured with.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	SHA256     = "sha256"
	SHA512_256 = "sha512/256"
	SHA3_256   = "sha3-256"
	BLAKE2b256 = "blake2b-256"
)

var ErrUnknownDigest = errors.New("digest: unknown digest")

// Digest is a named hash function.
type Digest struct {
	name string
	size int
	new  func() hash.Hash
}

// New returns a digest named name using newHasher to create hash states.
func New(name string, newHasher func() hash.Hash) Digest {
	return Digest{
		name: name,
		size: newHasher().Size(),
		new:  newHasher,
	}
}

func (d Digest) Name() string { return d.name }

// Size is the length of the raw digest in bytes.
func (d Digest) Size() int { return d.size }

func (d Digest) New() hash.Hash { return d.new() }

// Sum returns the lower-case hex digest of data.
func (d Digest) Sum(data []byte) string {
	h := d.new()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func (d Digest) String() string { return d.name }

// IsZero reports whether d is the zero Digest.
func (d Digest) IsZero() bool { return d.new == nil }

func newBlake2b256() hash.Hash {
	// New256 only fails for keys longer than 64 bytes.
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

var registry = map[string]Digest{
	SHA256:     New(SHA256, sha256.New),
	SHA512_256: New(SHA512_256, sha512.New512_256),
	SHA3_256:   New(SHA3_256, sha3.New256),
	BLAKE2b256: New(BLAKE2b256, newBlake2b256),
}

// Default is the digest used when none is configured.
func Default() Digest {
	return registry[SHA256]
}

// Names returns the registered digest names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Lookup returns the registered digest with the given name.
func Lookup(name string) (Digest, error) {
	d, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Digest{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownDigest, name, strings.Join(Names(), "|"))
	}
	return d, nil
}

// Select returns the first available digest among preferred, or the default
// digest when none of them is registered.
func Select(preferred ...string) Digest {
	for _, name := range preferred {
		if d, err := Lookup(name); err == nil {
			return d
		}
		slog.Debug("Digest not available", "digest", name)
	}
	d := Default()
	if len(preferred) > 0 {
		slog.Warn("No preferred digest available, falling back", "preferred", preferred, "digest", d.Name())
	}
	return d
}
