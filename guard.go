package timelock

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/semaphore"
)

// executionGuards gives each batch a single executor at a time within this engine.
type executionGuards struct {
	mu     sync.Mutex
	guards map[solana.PublicKey]*executionGuard
}

type executionGuard struct {
	sem  *semaphore.Weighted
	refs int
}

func newExecutionGuards() *executionGuards {
	return &executionGuards{guards: make(map[solana.PublicKey]*executionGuard)}
}

// acquire blocks until the caller is the only executor of batch or ctx is done.
func (g *executionGuards) acquire(ctx context.Context, batch solana.PublicKey) (func(), error) {
	g.mu.Lock()
	guard, ok := g.guards[batch]
	if !ok {
		guard = &executionGuard{sem: semaphore.NewWeighted(1)}
		g.guards[batch] = guard
	}
	guard.refs++
	g.mu.Unlock()

	if err := guard.sem.Acquire(ctx, 1); err != nil {
		g.drop(batch, guard)
		return nil, err
	}

	return func() {
		guard.sem.Release(1)
		g.drop(batch, guard)
	}, nil
}

func (g *executionGuards) drop(batch solana.PublicKey, guard *executionGuard) {
	g.mu.Lock()
	defer g.mu.Unlock()

	guard.refs--
	if guard.refs == 0 {
		delete(g.guards, batch)
	}
}

type executionScopeKey struct{}

// executionScope is the chain of batches whose delegated calls are running in a context.
type executionScope struct {
	batch  solana.PublicKey
	parent *executionScope
}

func withExecutionScope(ctx context.Context, batch solana.PublicKey) context.Context {
	parent, _ := ctx.Value(executionScopeKey{}).(*executionScope)

	return context.WithValue(ctx, executionScopeKey{}, &executionScope{batch: batch, parent: parent})
}

func inExecutionScope(ctx context.Context, batch solana.PublicKey) bool {
	scope, _ := ctx.Value(executionScopeKey{}).(*executionScope)
	for ; scope != nil; scope = scope.parent {
		if scope.batch.Equals(batch) {
			return true
		}
	}

	return false
}
