package policy

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ConcurrencyGate lazily creates one weighted semaphore per agent, sized to
// that agent's configured concurrency. The spec treats concurrency as
// informational unless a caller chooses to honor it; the request wrapper
// does, acquiring a slot around tool dispatch.
type ConcurrencyGate struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewConcurrencyGate constructs an empty gate.
func NewConcurrencyGate() *ConcurrencyGate {
	return &ConcurrencyGate{sems: make(map[string]*semaphore.Weighted)}
}

func (g *ConcurrencyGate) semaphoreFor(agentID string, limit int) *semaphore.Weighted {
	if limit < 1 {
		limit = 1
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	sem, ok := g.sems[agentID]
	if !ok {
		sem = semaphore.NewWeighted(int64(limit))
		g.sems[agentID] = sem
	}
	return sem
}

// Acquire blocks until a concurrency slot for agentID is available or ctx is
// done, whichever comes first.
func (g *ConcurrencyGate) Acquire(ctx context.Context, agentID string, limit int) error {
	return g.semaphoreFor(agentID, limit).Acquire(ctx, 1)
}

// Release returns a previously acquired slot for agentID.
func (g *ConcurrencyGate) Release(agentID string, limit int) {
	g.semaphoreFor(agentID, limit).Release(1)
}
