// Package mount resolves paths against the host's active mount table.
package mount

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// NotMountedError reports that a path does not sit on a separately mounted
// filesystem.
type NotMountedError struct {
	Path string
}

func (e *NotMountedError) Error() string {
	return fmt.Sprintf("%s is not on a mounted filesystem", e.Path)
}

// Point is one mounted filesystem.
type Point struct {
	Device string
	Dir    string
}

// Table is the set of active mounts.
type Table []Point

// Load reads the live mount table from /proc/self/mounts.
func Load() (Table, error) {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a mounts(5)-format table. Fields are whitespace separated;
// embedded spaces and tabs appear as octal escapes.
func Parse(r io.Reader) (Table, error) {
	var t Table
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		t = append(t, Point{Device: unescape(fields[0]), Dir: unescape(fields[1])})
	}
	return t, sc.Err()
}

// MountPoint resolves dir to an absolute path and returns the most specific
// mount point containing it. The root filesystem does not count: a path
// only covered by "/" is not on an external mount, and unmounting it would
// never be wanted.
func (t Table) MountPoint(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	points := make([]string, 0, len(t))
	for _, p := range t {
		points = append(points, filepath.Clean(p.Dir))
	}
	// Longest first so nested mounts win over their parents.
	sort.Slice(points, func(i, j int) bool { return len(points[i]) > len(points[j]) })
	for _, mp := range points {
		if mp == "/" {
			continue
		}
		if abs == mp || strings.HasPrefix(abs, mp+"/") {
			return mp, nil
		}
	}
	return "", &NotMountedError{Path: dir}
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
