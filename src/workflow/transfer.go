package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"virt-otg/src/disks"
	"virt-otg/src/transfer"
	"virt-otg/src/virtapi"
)

// TransferOut stops the guest, copies its disk images to the drive, and
// unmounts the drive so the operator can carry it to another host.
func (r *Runner) TransferOut(ctx context.Context) error {
	mountPoint, err := r.requireMounted()
	if err != nil {
		return err
	}

	paths, err := r.inventory(ctx)
	if err != nil {
		return err
	}
	r.logger().Info("starting transfer out", "domain", r.Domain, "disks", len(paths))

	// Stop the guest to release its image locks and keep it from coming
	// back on its own while its disks live elsewhere.
	if err := r.stopDomain(ctx); err != nil {
		return err
	}
	if err := r.setAutostart(ctx, false); err != nil {
		return err
	}

	if err := r.Cleaner.Cleanup(disks.DestPaths(paths, r.Drive)); err != nil {
		return err
	}
	if err := r.Engine.BackupSet(paths, r.Drive, ""); err != nil {
		return err
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	if err := transfer.WriteChecksums(r.Drive, names); err != nil {
		return err
	}

	if err := r.Unmount(ctx, mountPoint); err != nil {
		return err
	}

	r.logger().Info("transfer out complete, drive can be removed", "domain", r.Domain)
	return nil
}

// TransferIn replaces the guest's disk images with the copies on the drive,
// keeping a .bak sibling of each original, then brings the guest back up.
func (r *Runner) TransferIn(ctx context.Context) error {
	if _, err := r.requireMounted(); err != nil {
		return err
	}

	paths, err := r.inventory(ctx)
	if err != nil {
		return err
	}
	r.logger().Info("starting transfer in", "domain", r.Domain, "disks", len(paths))

	for _, p := range paths {
		name := filepath.Base(p)
		src := filepath.Join(r.Drive, name)
		onDrive := true
		if _, err := os.Stat(src); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
			onDrive = false
		}
		if onDrive {
			// Check the drive copy against its manifest before it
			// replaces anything.
			if err := transfer.VerifyChecksum(r.Drive, name); err != nil {
				return err
			}
		}
		// Keep the current image around in case the copy is bad.
		if err := os.Rename(p, p+disks.SuffixBak); err != nil {
			return fmt.Errorf("back up current image: %w", err)
		}
		if !onDrive {
			r.logger().Warn("no image on drive for disk", "disk", p)
			continue
		}
		if err := r.Engine.CopyFile(src, p); err != nil {
			return err
		}
	}

	if err := r.setAutostart(ctx, true); err != nil {
		return err
	}

	state, err := r.Client.State(ctx, r.Domain)
	if err != nil {
		return err
	}
	if state != virtapi.StateRunning {
		if err := r.Client.Start(ctx, r.Domain); err != nil {
			return err
		}
		if err := r.waitRunning(ctx); err != nil {
			return err
		}
	}

	r.logger().Info("transfer in complete", "domain", r.Domain)
	return nil
}
