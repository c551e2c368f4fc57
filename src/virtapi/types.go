package virtapi

import "context"

// DomainState is the power state reported by the manager for a guest.
type DomainState string

const (
	StateRunning DomainState = "running"
	StateShutOff DomainState = "shut off"
	StatePaused  DomainState = "paused"
)

// DiskOverlay names the external copy-on-write file to open on top of one
// disk. Disk is the guest's current backing file, Overlay the new file.
type DiskOverlay struct {
	Disk    string
	Overlay string
}

// Client is a narrow interface over the virtualization manager used by the
// workflows. Keep it small and focused on what we actually need so it stays
// mockable.
type Client interface {
	// DiskPaths returns the current backing file of every disk-type device
	// attached to the guest, in device order.
	DiskPaths(ctx context.Context, domain string) ([]string, error)

	// CreateSnapshot opens an external disk-only snapshot. The call is
	// atomic across the disk set: either every disk gets its overlay or
	// none do. Quiescing the guest filesystem is requested when quiesce is
	// true and requires a functioning guest agent.
	CreateSnapshot(ctx context.Context, domain, name string, disks []DiskOverlay, quiesce bool) error

	// BlockCommit merges a disk's active overlay chain into its base and
	// pivots the guest back to the base. The merge runs asynchronously in
	// the manager; use BlockJobActive to detect completion.
	BlockCommit(ctx context.Context, domain, path string, shallow bool) error

	// BlockJobActive reports whether a block job is still running on the
	// given disk path.
	BlockJobActive(ctx context.Context, domain, path string) (bool, error)

	State(ctx context.Context, domain string) (DomainState, error)
	Start(ctx context.Context, domain string) error
	Destroy(ctx context.Context, domain string) error

	AutostartEnabled(ctx context.Context, domain string) (bool, error)
	SetAutostart(ctx context.Context, domain string, enabled bool) error
}
