// Package ledger binds a hash chain to a store. It is the single writer the
// chain expects: appends are serialized and persisted before they become
// visible in memory.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/liftedinit/roadchain/internal/chain"
	"github.com/liftedinit/roadchain/internal/store"
)

type Ledger[T any] struct {
	mu    sync.RWMutex
	chain *chain.Chain[T]
	store store.Store
	opts  []chain.Option
}

// Open loads the stored chain. The loaded blocks are not verified.
func Open[T any](ctx context.Context, st store.Store, opts ...chain.Option) (*Ledger[T], error) {
	c, err := load[T](ctx, st, opts)
	if err != nil {
		return nil, err
	}
	slog.Debug("Ledger opened", "blocks", c.Len(), "digest", c.Digest().Name(), "head", c.Head())

	return &Ledger[T]{
		chain: c,
		store: st,
		opts:  opts,
	}, nil
}

func load[T any](ctx context.Context, st store.Store, opts []chain.Option) (*chain.Chain[T], error) {
	records, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain: %w", err)
	}
	blocks, err := chain.DecodeAll[T](records)
	if err != nil {
		return nil, fmt.Errorf("failed to decode chain: %w", err)
	}
	return chain.Load(blocks, opts...), nil
}

// Reload replaces the in-memory chain with the stored one, picking up blocks
// written by other processes. On error the current chain is kept.
func (l *Ledger[T]) Reload(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, err := load[T](ctx, l.store, l.opts)
	if err != nil {
		return err
	}
	l.chain = c
	return nil
}

// Append persists a new block and then adds it to the chain.
func (l *Ledger[T]) Append(ctx context.Context, payload T, actor string) (chain.Block[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.append(ctx, payload, actor)
}

func (l *Ledger[T]) append(ctx context.Context, payload T, actor string) (chain.Block[T], error) {
	b, err := l.prepare(payload, actor)
	if err != nil {
		return chain.Block[T]{}, err
	}
	r, err := b.Record()
	if err != nil {
		return chain.Block[T]{}, err
	}
	if err := l.store.Append(ctx, r); err != nil {
		return chain.Block[T]{}, fmt.Errorf("failed to persist block %d: %w", b.Index, err)
	}
	if err := l.chain.Commit(b); err != nil {
		return chain.Block[T]{}, fmt.Errorf("failed to commit block %d: %w", b.Index, err)
	}
	slog.Debug("Block appended", "index", b.Index, "actor", actor, "hash", b.Hash)
	return b, nil
}

// prepare turns the chain's panic on unencodable payloads into an error.
func (l *Ledger[T]) prepare(payload T, actor string) (b chain.Block[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", chain.ErrEncode, r)
		}
	}()
	return l.chain.Prepare(payload, actor), nil
}

// EnsureGenesis appends a genesis block if the chain is empty. It reports
// whether a block was written.
func (l *Ledger[T]) EnsureGenesis(ctx context.Context, payload T, actor string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.chain.Len() > 0 {
		return false, nil
	}
	if _, err := l.append(ctx, payload, actor); err != nil {
		return false, fmt.Errorf("failed to write genesis block: %w", err)
	}
	return true, nil
}

func (l *Ledger[T]) Verify() chain.Result {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Verify()
}

// VerifyFunc verifies the chain and reports each verified index to progress.
func (l *Ledger[T]) VerifyFunc(progress func(index int)) chain.Result {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.VerifyFunc(progress)
}

func (l *Ledger[T]) Sample(n int, rng *rand.Rand) chain.SampleResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Sample(n, rng)
}

func (l *Ledger[T]) Head() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Head()
}

func (l *Ledger[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Len()
}

func (l *Ledger[T]) Blocks() []chain.Block[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Blocks()
}

func (l *Ledger[T]) Stats() chain.Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Stats()
}

func (l *Ledger[T]) Close() error {
	return l.store.Close()
}
