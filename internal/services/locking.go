package services

import (
	"context"
	"time"

	"bondfall/internal/bondlock"
	apperrors "bondfall/internal/errors"
)

// lockAcquireTimeout bounds how long an operation may wait for a bond's
// critical section before giving up.
const lockAcquireTimeout = 5 * time.Second

// withBondLock runs fn inside the bond's mutual-exclusion scope. The lock is
// released on every path; acquisition failures surface as internal errors.
func withBondLock(ctx context.Context, guard *bondlock.Guard, bondID string, fn func() error) error {
	lockCtx, cancel := context.WithTimeout(ctx, lockAcquireTimeout)
	defer cancel()

	if err := guard.Acquire(lockCtx, bondID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer guard.Release(bondID)

	return fn()
}
