// Package clock abstracts time for the bond engine. Every component that
// reads the current time takes a Clock so tests can drive accrual windows
// and maturity deterministically.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by time.Now.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time { return time.Now() }
