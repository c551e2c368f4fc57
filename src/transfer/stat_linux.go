//go:build linux

package transfer

import (
	"io/fs"
	"syscall"
	"time"
)

// accessTime extracts the source's atime so Chtimes can carry both stamps
// over, the way copystat-style tools do.
func accessTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))
	}
	return info.ModTime()
}
