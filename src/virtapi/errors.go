package virtapi

import (
	"fmt"
	"strings"
)

// ManagerCommandError reports a non-zero response from the virtualization
// manager for a single command.
type ManagerCommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ManagerCommandError) Error() string {
	msg := fmt.Sprintf("manager command %q failed: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ManagerCommandError) Unwrap() error { return e.Err }

// InventoryError reports that a guest's disk inventory could not be
// resolved: the guest is unknown or its descriptor cannot be parsed. No
// further operation on the guest is safe once this is returned.
type InventoryError struct {
	Domain string
	Err    error
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("resolve disk inventory of %s: %v", e.Domain, e.Err)
}

func (e *InventoryError) Unwrap() error { return e.Err }
