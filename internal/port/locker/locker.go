package locker

import "context"

// AdvisoryLocker serialises critical sections across processes using
// Postgres session advisory locks. WithLock must lock and unlock on the same
// DB connection — session-level pg_advisory_lock semantics require it.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
