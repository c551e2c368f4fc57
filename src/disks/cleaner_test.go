package disks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCleanup_RefusesImageOutsideDrive(t *testing.T) {
	host := t.TempDir()
	drive := t.TempDir()

	live := filepath.Join(host, "a.qcow2")
	writeFile(t, live)

	c := &Cleaner{Drive: drive}
	err := c.Cleanup([]string{live})
	var unsafe *UnsafeDeletionError
	if !errors.As(err, &unsafe) {
		t.Fatalf("expected UnsafeDeletionError, got %v", err)
	}
	if _, statErr := os.Stat(live); statErr != nil {
		t.Fatalf("live image was deleted: %v", statErr)
	}
}

func TestCleanup_UnsafePathAbortsRemainder(t *testing.T) {
	host := t.TempDir()
	drive := t.TempDir()

	overlay := filepath.Join(host, "a.qcow2.snap")
	live := filepath.Join(host, "b.qcow2")
	later := filepath.Join(host, "c.qcow2.snap")
	writeFile(t, overlay)
	writeFile(t, live)
	writeFile(t, later)

	c := &Cleaner{Drive: drive}
	err := c.Cleanup([]string{overlay, live, later})
	var unsafe *UnsafeDeletionError
	if !errors.As(err, &unsafe) {
		t.Fatalf("expected UnsafeDeletionError, got %v", err)
	}
	if unsafe.Path != live {
		t.Fatalf("wrong offending path: %s", unsafe.Path)
	}
	if _, statErr := os.Stat(overlay); statErr == nil {
		t.Fatal("overlay before the unsafe path should have been deleted")
	}
	if _, statErr := os.Stat(later); statErr != nil {
		t.Fatal("path after the unsafe one must remain untouched")
	}
}

func TestCleanup_AllowsImagesUnderDrive(t *testing.T) {
	drive := t.TempDir()
	stale := filepath.Join(drive, "a.qcow2")
	writeFile(t, stale)

	c := &Cleaner{Drive: drive}
	if err := c.Cleanup([]string{stale}); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale drive image should be gone")
	}
}

func TestCleanup_MissingFileIsNotAnError(t *testing.T) {
	host := t.TempDir()
	c := &Cleaner{Drive: t.TempDir()}
	if err := c.Cleanup([]string{filepath.Join(host, "gone.qcow2.tmp")}); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestCleanup_SiblingPrefixIsNotUnderDrive(t *testing.T) {
	drive := t.TempDir()
	sibling := drive + "-evil"
	if err := os.MkdirAll(sibling, 0o755); err != nil {
		t.Fatal(err)
	}
	img := filepath.Join(sibling, "a.qcow2")
	writeFile(t, img)

	c := &Cleaner{Drive: drive}
	var unsafe *UnsafeDeletionError
	if err := c.Cleanup([]string{img}); !errors.As(err, &unsafe) {
		t.Fatalf("expected UnsafeDeletionError for sibling-prefix path, got %v", err)
	}
}
