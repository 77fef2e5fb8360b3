// internal/lock/lock.go
package lock

import (
	"context"
	"errors"
)

// ErrLockTimeout is returned when a lock could not be acquired within the wait window.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Locker serialises work per key (a wallet owner) across requests.
// The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
