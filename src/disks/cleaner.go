package disks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnsafeDeletionError reports an attempt to delete a persistent disk image
// that is not stored on the external drive. Overlay suffixes are safe
// host-side artifacts, but a bare image path might be a guest's live
// storage; the cleaner refuses rather than risk it.
type UnsafeDeletionError struct {
	Path  string
	Drive string
}

func (e *UnsafeDeletionError) Error() string {
	return fmt.Sprintf("refusing to delete %s: persistent image outside external drive %s", e.Path, e.Drive)
}

// Cleaner deletes files from a disk-path set. Deleting a missing file is
// not an error; the first unsafe path aborts before it is deleted and no
// later path is touched.
type Cleaner struct {
	Drive string // external drive root
}

func (c *Cleaner) Cleanup(paths []string) error {
	for _, p := range paths {
		if strings.HasSuffix(p, ImageExt) && !underRoot(c.Drive, p) {
			return &UnsafeDeletionError{Path: p, Drive: c.Drive}
		}
		if err := os.Remove(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func underRoot(root, path string) bool {
	if root == "" {
		return false
	}
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}
