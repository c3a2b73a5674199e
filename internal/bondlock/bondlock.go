// Package bondlock serializes operations against a single bond. Every
// mutating engine operation (invest, distribute, redeem, lifecycle
// transition) runs inside the bond's critical section so no caller can
// observe a partially applied waterfall pass or cap check. Operations on
// different bonds do not contend.
package bondlock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Guard is a keyed mutual-exclusion scope, one slot per bond ID.
type Guard struct {
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// NewGuard creates an empty Guard.
func NewGuard() *Guard {
	return &Guard{locks: make(map[string]*semaphore.Weighted)}
}

func (g *Guard) sem(bondID string) *semaphore.Weighted {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.locks[bondID]
	if !ok {
		s = semaphore.NewWeighted(1)
		g.locks[bondID] = s
	}
	return s
}

// Acquire blocks until the bond's slot is free or ctx expires. The ctx bound
// keeps lock acquisition from waiting forever behind a stuck operation.
func (g *Guard) Acquire(ctx context.Context, bondID string) error {
	return g.sem(bondID).Acquire(ctx, 1)
}

// Release frees the bond's slot. Must be called exactly once per successful
// Acquire, on error paths included.
func (g *Guard) Release(bondID string) {
	g.sem(bondID).Release(1)
}
