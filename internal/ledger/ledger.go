// Package ledger defines the external payment boundary. The engine never
// holds funds itself; redemption computes a payout and delegates the actual
// movement to a Ledger, committing its own accounting only when the transfer
// reports success.
package ledger

import (
	"context"
	"fmt"
)

// Ledger moves funds to an investor. Implementations must return a definite
// success or failure; the engine treats any error as "no funds moved".
type Ledger interface {
	Transfer(ctx context.Context, to string, amount int64) error
}

// TransferError reports a failed transfer, distinguishing insufficient funds
// from transport or gateway failures.
type TransferError struct {
	Reason string
	Err    error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transfer failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transfer failed: %s", e.Reason)
}

func (e *TransferError) Unwrap() error { return e.Err }
