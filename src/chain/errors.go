package chain

import (
	"fmt"
	"time"
)

// SnapshotCreationError reports a failed snapshot call. The manager call is
// atomic, so no partial overlays exist when this is returned.
type SnapshotCreationError struct {
	Domain string
	Name   string
	Err    error
}

func (e *SnapshotCreationError) Error() string {
	return fmt.Sprintf("create snapshot %s for %s: %v", e.Name, e.Domain, e.Err)
}

func (e *SnapshotCreationError) Unwrap() error { return e.Err }

// CommitTimeoutError reports a block commit whose job never cleared within
// the deadline. Disks after the timed-out one were not attempted.
type CommitTimeoutError struct {
	Domain   string
	Path     string
	Deadline time.Duration
}

func (e *CommitTimeoutError) Error() string {
	return fmt.Sprintf("block commit on %s did not finish within %s", e.Path, e.Deadline)
}
