package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/liftedinit/roadchain/internal/digest"
	"github.com/liftedinit/roadchain/internal/models"
)

// Block is one entry of the chain.
type Block[T any] struct {
	Index        int
	PreviousHash string
	Timestamp    time.Time
	Actor        string
	Payload      T
	Hash         string
}

// canonicalBlock fields are declared in lexical key order.
type canonicalBlock struct {
	Actor        string          `json:"actor"`
	Index        int             `json:"index"`
	Payload      json.RawMessage `json:"payload"`
	PreviousHash string          `json:"previous_hash"`
	Timestamp    string          `json:"timestamp"`
}

// Canonical returns the bytes the block hash is computed over.
func (b Block[T]) Canonical() ([]byte, error) {
	payload, err := json.Marshal(b.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrEncode, err)
	}
	data, err := json.Marshal(canonicalBlock{
		Actor:        b.Actor,
		Index:        b.Index,
		Payload:      payload,
		PreviousHash: b.PreviousHash,
		Timestamp:    FormatTimestamp(b.Timestamp),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return data, nil
}

// ComputeHash returns the hex digest of the block's canonical serialization.
// The stored Hash field is ignored.
func (b Block[T]) ComputeHash(d digest.Digest) (string, error) {
	data, err := b.Canonical()
	if err != nil {
		return "", err
	}
	return d.Sum(data), nil
}

// Record converts the block to its persisted form.
func (b Block[T]) Record() (models.Record, error) {
	if b.Index < 0 {
		return models.Record{}, fmt.Errorf("%w: negative index %d", ErrEncode, b.Index)
	}
	payload, err := json.Marshal(b.Payload)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: payload: %w", ErrEncode, err)
	}
	return models.Record{
		Index:        uint64(b.Index),
		PreviousHash: b.PreviousHash,
		Timestamp:    b.Timestamp,
		Actor:        b.Actor,
		Payload:      payload,
		Hash:         b.Hash,
	}, nil
}

// Decode converts a persisted record into a block with a typed payload.
func Decode[T any](r models.Record) (Block[T], error) {
	if r.Index > math.MaxInt {
		return Block[T]{}, fmt.Errorf("record index %d overflows int", r.Index)
	}
	b := Block[T]{
		Index:        int(r.Index),
		PreviousHash: r.PreviousHash,
		Timestamp:    r.Timestamp,
		Actor:        r.Actor,
		Hash:         r.Hash,
	}
	payload := r.Payload
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = json.RawMessage("null")
	}
	if err := json.Unmarshal(payload, &b.Payload); err != nil {
		return Block[T]{}, fmt.Errorf("decode payload of record %d: %w", r.Index, err)
	}
	return b, nil
}

// DecodeAll decodes records in order.
func DecodeAll[T any](records []models.Record) ([]Block[T], error) {
	blocks := make([]Block[T], 0, len(records))
	for _, r := range records {
		b, err := Decode[T](r)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// FormatTimestamp renders t the way it enters the canonical serialization.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
