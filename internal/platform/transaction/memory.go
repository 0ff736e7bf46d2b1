package transaction

import (
	"context"
	"sync"
)

type journalKey struct{}

type journal struct {
	undo []func()
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

// InMemory serialises units of work over the in-memory adapters. Adapters
// register an undo step per mutation; the steps run in reverse order when the
// unit of work fails or panics.
type InMemory struct {
	mu sync.Mutex
}

// NewInMemory constructs an in-memory transaction manager.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Do executes fn under the manager lock. Nested calls join the outer unit of work.
func (m *InMemory) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	j := &journal{}
	txCtx := context.WithValue(ctx, journalKey{}, j)
	committed := false
	defer func() {
		if !committed {
			j.rollback()
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		return err
	}
	committed = true
	return nil
}

// OnRollback registers undo for the unit of work bound to ctx. It is a no-op
// outside an InMemory transaction.
func OnRollback(ctx context.Context, undo func()) {
	if undo == nil {
		return
	}
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.undo = append(j.undo, undo)
	}
}

// InTransaction reports whether ctx is bound to an InMemory unit of work.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(journalKey{}).(*journal)
	return ok
}

var _ Manager = (*InMemory)(nil)
