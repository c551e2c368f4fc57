package workflow

import (
	"context"
	"path/filepath"

	"virt-otg/src/disks"
	"virt-otg/src/transfer"
)

// FullBackup flattens any existing snapshot overlays into their bases,
// opens a fresh overlay per disk so the guest keeps writing, and copies the
// now-frozen base images to the drive root. The overlay itself is never
// transferred; it is re-committed by the next full backup.
func (r *Runner) FullBackup(ctx context.Context) error {
	if _, err := r.requireMounted(); err != nil {
		return err
	}

	paths, err := r.inventory(ctx)
	if err != nil {
		return err
	}
	r.logger().Info("starting full backup", "domain", r.Domain, "disks", len(paths))

	// Fold the previous cycle's overlays back into the bases and drop the
	// orphaned overlay files.
	merged, err := r.Commits.Commit(ctx, r.Domain, paths, false, disks.SuffixSnap)
	if err != nil {
		return err
	}
	if err := r.Cleaner.Cleanup(merged); err != nil {
		return err
	}

	// The commits pivoted the guest back to the bases; re-query.
	basePaths, err := r.inventory(ctx)
	if err != nil {
		return err
	}

	if _, err := r.Snapshots.CreateSnapshot(ctx, r.Domain, basePaths, disks.SuffixSnap); err != nil {
		return err
	}

	// Pre-clean stale copies of the same images on the drive, then copy
	// the frozen bases off-host.
	if err := r.Cleaner.Cleanup(disks.DestPaths(basePaths, r.Drive)); err != nil {
		return err
	}
	if err := r.Engine.BackupSet(basePaths, r.Drive, ""); err != nil {
		return err
	}

	names := make([]string, len(basePaths))
	for i, p := range basePaths {
		names[i] = filepath.Base(p)
	}
	if err := transfer.WriteChecksums(r.Drive, names); err != nil {
		return err
	}

	r.logger().Info("full backup complete", "domain", r.Domain)
	return nil
}

// IncrementalBackup copies the frozen snapshot overlays into a timestamped
// directory on the drive. A transient overlay absorbs guest writes during
// the copy and is shallow-committed away afterwards, leaving the chain as
// it was: base <- .snap.
func (r *Runner) IncrementalBackup(ctx context.Context) error {
	if _, err := r.requireMounted(); err != nil {
		return err
	}

	paths, err := r.inventory(ctx)
	if err != nil {
		return err
	}

	// An incremental pass needs a baseline frozen by a prior full backup.
	// A leftover transient overlay still counts: its backing file is the
	// baseline.
	baseline := false
	for _, p := range paths {
		if disks.HasSuffix(disks.TrimTmp(p), disks.SuffixSnap) {
			baseline = true
			break
		}
	}
	if !baseline {
		return &NoBaselineError{Domain: r.Domain}
	}

	r.logger().Info("starting incremental backup", "domain", r.Domain, "disks", len(paths))

	// Reuse a transient overlay left behind by an interrupted run instead
	// of stacking another one on the chain.
	if disks.AnyWithSuffix(paths, disks.SuffixTmp) {
		r.logger().Info("reusing existing transient overlay", "domain", r.Domain)
	} else {
		if _, err := r.Snapshots.CreateSnapshot(ctx, r.Domain, paths, disks.SuffixTmp); err != nil {
			return err
		}
	}

	// The files frozen under the transient overlays are what gets copied.
	frozen := make([]string, len(paths))
	for i, p := range paths {
		frozen[i] = disks.TrimTmp(p)
	}
	if err := r.Engine.BackupSet(frozen, r.Drive, r.timestamp()); err != nil {
		return err
	}

	// Merge the transient overlays away, one level only, and delete the
	// orphaned overlay files.
	current, err := r.inventory(ctx)
	if err != nil {
		return err
	}
	merged, err := r.Commits.Commit(ctx, r.Domain, current, true, disks.SuffixTmp)
	if err != nil {
		return err
	}
	if err := r.Cleaner.Cleanup(merged); err != nil {
		return err
	}

	r.logger().Info("incremental backup complete", "domain", r.Domain)
	return nil
}
