package lease

import "fmt"

// LockNotGrantedError reports that an acquire call exceeded its deadline
// without obtaining the lock. Recoverable: the caller may retry with
// fresh parameters.
type LockNotGrantedError struct {
	Name string
}

func (e *LockNotGrantedError) Error() string {
	return fmt.Sprintf("lease: lock %q not granted before deadline", e.Name)
}

// LockLostError reports that this host's asserted ownership of a lock
// was invalidated — a conditional refresh or release found the store's
// version no longer matched. Not recoverable for this lock instance;
// the caller must assume the protected resource's state is suspect.
type LockLostError struct {
	Name string
}

func (e *LockLostError) Error() string {
	return fmt.Sprintf("lease: ownership of lock %q was lost", e.Name)
}

// NoSuchLockError reports that an operation referenced a lock not
// present in local state.
type NoSuchLockError struct {
	Name string
}

func (e *NoSuchLockError) Error() string {
	return fmt.Sprintf("lease: lock %q is not held locally", e.Name)
}

// CannotDeserializeError reports a malformed or version-incompatible
// serialized envelope.
type CannotDeserializeError struct {
	Reason string
}

func (e *CannotDeserializeError) Error() string {
	return fmt.Sprintf("lease: cannot deserialize: %s", e.Reason)
}
