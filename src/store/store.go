// Package store understands the external drive's backup layout: the full
// backup's images sit at the drive root, each incremental run in a
// timestamped subdirectory.
package store

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind constants for drive entries.
const (
	KindFull        = "full"
	KindIncremental = "incremental"
)

// Entry is one backup found on the drive.
type Entry struct {
	Kind      string   `json:"kind"`
	Timestamp string   `json:"timestamp,omitempty"` // incremental run directory name
	Files     []string `json:"files"`
}

var runDirPattern = regexp.MustCompile(`^\d{8}_\d{6}$`)

// List scans the drive root. Files and directories that are not part of the
// backup layout are ignored.
func List(root string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	full := Entry{Kind: KindFull}
	var runs []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() {
			if !runDirPattern.MatchString(name) {
				continue
			}
			sub, err := os.ReadDir(filepath.Join(root, name))
			if err != nil {
				return nil, err
			}
			run := Entry{Kind: KindIncremental, Timestamp: name}
			for _, f := range sub {
				if !f.IsDir() {
					run.Files = append(run.Files, f.Name())
				}
			}
			runs = append(runs, run)
			continue
		}
		if strings.HasSuffix(name, ".qcow2") {
			full.Files = append(full.Files, name)
		}
	}

	var entries []Entry
	if len(full.Files) > 0 {
		entries = append(entries, full)
	}
	// ReadDir sorts by name, so runs are already in timestamp order.
	return append(entries, runs...), nil
}
