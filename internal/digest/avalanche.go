package digest

import (
	"encoding/hex"
	"fmt"
	"math/bits"
)

// AvalancheStats describes how far apart two digests of the same size are.
type AvalancheStats struct {
	HexChars     int
	HexDiffering int
	Bits         int
	BitsFlipped  int
}

// HexRatio is the fraction of differing hex characters.
func (s AvalancheStats) HexRatio() float64 {
	if s.HexChars == 0 {
		return 0
	}
	return float64(s.HexDiffering) / float64(s.HexChars)
}

// BitRatio is the fraction of flipped bits. Close to 0.5 for a good hash.
func (s AvalancheStats) BitRatio() float64 {
	if s.Bits == 0 {
		return 0
	}
	return float64(s.BitsFlipped) / float64(s.Bits)
}

// Avalanche compares two hex encoded digests of equal length.
func Avalanche(a, b string) (AvalancheStats, error) {
	if len(a) != len(b) {
		return AvalancheStats{}, fmt.Errorf("digest: length mismatch %d != %d", len(a), len(b))
	}
	ra, err := hex.DecodeString(a)
	if err != nil {
		return AvalancheStats{}, fmt.Errorf("decode %q: %w", a, err)
	}
	rb, err := hex.DecodeString(b)
	if err != nil {
		return AvalancheStats{}, fmt.Errorf("decode %q: %w", b, err)
	}

	stats := AvalancheStats{
		HexChars: len(a),
		Bits:     len(ra) * 8,
	}
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			stats.HexDiffering++
		}
	}
	for i := range ra {
		stats.BitsFlipped += bits.OnesCount8(ra[i] ^ rb[i])
	}
	return stats, nil
}
