package testutil

import (
	"context"
	"sync"
	"time"

	"bondfall/internal/ledger"
)

// FakeClock is a manually advanced clock for deterministic yield tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock frozen at the given time.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to the given time.
func (c *FakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// LedgerCall records one transfer request observed by FakeLedger.
type LedgerCall struct {
	To     string
	Amount int64
}

// FakeLedger records transfers and can be told to fail the next call.
type FakeLedger struct {
	mu    sync.Mutex
	calls []LedgerCall
	err   error
}

// NewFakeLedger creates a ledger that accepts every transfer.
func NewFakeLedger() *FakeLedger {
	return &FakeLedger{}
}

func (l *FakeLedger) Transfer(ctx context.Context, to string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.calls = append(l.calls, LedgerCall{To: to, Amount: amount})
	return nil
}

// FailWith makes every subsequent transfer return err. Pass nil to restore
// normal behavior.
func (l *FakeLedger) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// Calls returns a copy of the successful transfers so far.
func (l *FakeLedger) Calls() []LedgerCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LedgerCall, len(l.calls))
	copy(out, l.calls)
	return out
}

var _ ledger.Ledger = (*FakeLedger)(nil)
