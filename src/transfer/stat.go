package transfer

import "os"

// copyStat applies src's permission bits and access/modification times to
// dst.
func copyStat(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, accessTime(info), info.ModTime())
}
