package workflow

import (
	"fmt"
	"time"
)

// NoBaselineError reports an incremental backup attempted before any full
// backup froze a baseline for the guest.
type NoBaselineError struct {
	Domain string
}

func (e *NoBaselineError) Error() string {
	return fmt.Sprintf("no snapshot baseline for %s: run a full backup first", e.Domain)
}

// StartTimeoutError reports a guest that did not reach the running state
// within the deadline after being started.
type StartTimeoutError struct {
	Domain  string
	Timeout time.Duration
}

func (e *StartTimeoutError) Error() string {
	return fmt.Sprintf("domain %s did not reach running state within %s", e.Domain, e.Timeout)
}
