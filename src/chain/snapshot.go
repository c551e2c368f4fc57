// Package chain sequences the overlay-chain lifecycle of a guest's disks:
// opening external copy-on-write overlays and merging them back into their
// bases with live block commits.
package chain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"virt-otg/src/virtapi"
)

// Snapshotter opens external overlays over a guest's disks.
type Snapshotter struct {
	Client virtapi.Client
	Log    *slog.Logger
	Now    func() time.Time // snapshot naming; time.Now when nil
}

func (s *Snapshotter) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// CreateSnapshot asks the manager for one external overlay per disk, named
// <disk><suffix>, in a single disk-only snapshot. Quiescing is requested
// first and retried without when the manager rejects it, so a guest without
// a working agent still gets a crash-consistent snapshot.
func (s *Snapshotter) CreateSnapshot(ctx context.Context, domain string, diskPaths []string, suffix string) (string, error) {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	name := "backup_" + now().Format("20060102_150405")

	overlays := make([]virtapi.DiskOverlay, 0, len(diskPaths))
	for _, p := range diskPaths {
		overlays = append(overlays, virtapi.DiskOverlay{Disk: p, Overlay: p + suffix})
	}

	err := s.Client.CreateSnapshot(ctx, domain, name, overlays, true)
	if err != nil {
		var mgrErr *virtapi.ManagerCommandError
		if errors.As(err, &mgrErr) {
			s.logger().Warn("quiesced snapshot rejected, retrying without quiesce",
				"domain", domain, "name", name, "error", err)
			err = s.Client.CreateSnapshot(ctx, domain, name, overlays, false)
		}
	}
	if err != nil {
		return "", &SnapshotCreationError{Domain: domain, Name: name, Err: err}
	}
	s.logger().Info("snapshot created", "domain", domain, "name", name, "disks", len(overlays))
	return name, nil
}
