// Package disks tracks the role of each virtual disk file by its suffix and
// guards deletions of the set. A guest's live backing file carries no
// suffix; overlays and safety copies are siblings with a role suffix.
package disks

import (
	"path/filepath"
	"strings"
)

const (
	// ImageExt marks a persistent disk image. The cleaner never deletes a
	// path with this extension unless it sits under the external drive.
	ImageExt = ".qcow2"

	// SuffixSnap is the persistent overlay opened by a full backup; it
	// absorbs guest writes until the next full backup re-commits it.
	SuffixSnap = ".snap"
	// SuffixTmp is the transient overlay opened for one incremental pass.
	SuffixTmp = ".tmp"
	// SuffixBak is the safety copy of a live image made before transfer-in
	// replaces it.
	SuffixBak = ".bak"
)

// HasSuffix reports whether path carries the given role suffix.
func HasSuffix(path, suffix string) bool {
	return strings.HasSuffix(path, suffix)
}

// TrimTmp strips a trailing transient-overlay suffix, returning the path
// that was live before the overlay was opened. Paths without the suffix are
// returned unchanged.
func TrimTmp(path string) string {
	return strings.TrimSuffix(path, SuffixTmp)
}

// AnyWithSuffix reports whether any path in the set carries the suffix.
func AnyWithSuffix(paths []string, suffix string) bool {
	for _, p := range paths {
		if HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// Filter returns the ordered subsequence of paths carrying the suffix.
func Filter(paths []string, suffix string) []string {
	var out []string
	for _, p := range paths {
		if HasSuffix(p, suffix) {
			out = append(out, p)
		}
	}
	return out
}

// DestPaths maps each disk path to its same-named file under dir, keeping
// the set's order.
func DestPaths(paths []string, dir string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Join(dir, filepath.Base(p))
	}
	return out
}
