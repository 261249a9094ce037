// Package lock provides a cross-process mutual-exclusion lock built on hard links.
//
// No daemon, database or kernel advisory lock is involved. The only
// synchronization primitive is link(2), which atomically creates a new name
// for a file and fails with EEXIST when that name is already taken.
//
// # Filesystem Layout
//
// For a protected resource at path R there are two kinds of entries:
//
//	R             the lock link; present only while the lock is held
//	R.<owner-id>  an owner marker, one per claimant
//
// An acquisition attempt exclusively creates its own empty marker and then
// links it to R. Whoever creates the link owns the lock. Release checks that
// R and the marker are still the same inode, removes R (which frees the
// resource for the next claimant) and then removes the marker.
//
// # Usage
//
// The package-level functions are the protocol itself:
//
//	err := lock.Acquire("/tmp/content.lock", ownerID)
//	switch {
//	case err == nil:
//	    defer lock.Release("/tmp/content.lock", ownerID)
//	case errors.Is(err, errors.ErrLockHeld):
//	    // someone else has it; try again later
//	default:
//	    return err
//	}
//
// A Locker wraps the same protocol in a handle that remembers whether it holds
// the lock and adds a blocking Acquire(ctx) with jittered retries. The retry
// loop also watches the lock directory, so a release is noticed immediately
// instead of on the next poll:
//
//	l, err := lock.New("/tmp/content.lock", owner.New().String())
//	if err != nil {
//	    return err
//	}
//	ctx, cancel := context.WithTimeout(ctx, time.Minute)
//	defer cancel()
//	err = l.With(ctx, func() error {
//	    // exclusive section
//	    return nil
//	})
//
// # Error Handling
//
// Every error is a *errors.LockError wrapping one of:
//
// - ErrLockHeld: contention, the normal outcome under load
// - ErrOwnershipMismatch: release found R linked to someone else, or gone
// - ErrProtocolMisuse: duplicate owner id in flight, reentrant acquire, or release without acquire
// - ErrFilesystemFault: anything else the filesystem reported; the OS error stays in the chain
//
// # Crashed Holders
//
// A holder that dies before Release leaves R and its marker behind and the
// lock stays taken. Nothing here guesses at liveness. Inspect recovers the
// owner id from the marker name and Break removes both entries; deciding when
// that is safe belongs to the caller.
//
// # Thread Safety
//
// A Locker must not be shared between goroutines. Distinct Lockers with
// distinct owner ids may race freely, in one process or many.
//
// # System Requirements
//
// A Unix-like platform and a filesystem where link(2) is atomic. Local
// filesystems qualify; network filesystems need to be checked individually.
package lock
