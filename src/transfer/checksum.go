package transfer

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// ChecksumFileName is the manifest written next to full-backup images on
// the drive: one "<hex digest>  <file name>" line per image.
const ChecksumFileName = "checksums.b3"

// HashFile returns the hex BLAKE3 digest of the file contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteChecksums hashes the named files in dir and writes the manifest
// alongside them, replacing any previous one.
func WriteChecksums(dir string, names []string) error {
	out, err := os.Create(filepath.Join(dir, ChecksumFileName))
	if err != nil {
		return err
	}
	defer out.Close()
	for _, name := range names {
		sum, err := HashFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%s  %s\n", sum, name); err != nil {
			return err
		}
	}
	return nil
}

// VerifyChecksum re-hashes dir/name and compares it against the manifest in
// dir. A missing manifest or a file with no manifest entry passes:
// verification is best-effort, drives written by older runs carry no
// manifest.
func VerifyChecksum(dir, name string) error {
	data, err := os.ReadFile(filepath.Join(dir, ChecksumFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[1] != name {
			continue
		}
		actual, err := HashFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if actual != fields[0] {
			return fmt.Errorf("checksum mismatch for %s: manifest %s, file %s", name, fields[0], actual)
		}
		return nil
	}
	return nil
}
