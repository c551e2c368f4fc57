// Package transfer copies disk images between the host and the external
// drive with byte-for-byte fidelity.
package transfer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"virt-otg/src/util/progress"
)

// DefaultChunkSize is the buffer size of the fallback copy loop.
const DefaultChunkSize = 1 << 20

// CopyError reports a failed image copy. Any partial destination has been
// removed by the time this propagates.
type CopyError struct {
	Src string
	Dst string
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// Engine copies disk images. A zero Engine is usable: kernel fast path,
// default chunk size, no progress output.
type Engine struct {
	ChunkSize int64
	Progress  io.Writer // set only when stdout is an interactive terminal
	Log       *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

func (e *Engine) chunkSize() int64 {
	if e.ChunkSize > 0 {
		return e.ChunkSize
	}
	return DefaultChunkSize
}

// CopyFile copies src to dst. The kernel fast path (copy_file_range or
// sendfile, picked by ReadFrom on *os.File) is tried first; any fast-path
// error restarts the copy as a plain buffered loop. On failure the partial
// destination is removed before the error propagates. On success the
// source's permission bits and timestamps are applied to dst.
func (e *Engine) CopyFile(src, dst string) error {
	if err := e.copyContents(src, dst); err != nil {
		if rmErr := os.Remove(dst); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger().Warn("could not remove partial destination", "path", dst, "error", rmErr)
		}
		return &CopyError{Src: src, Dst: dst, Err: err}
	}
	if err := copyStat(src, dst); err != nil {
		return &CopyError{Src: src, Dst: dst, Err: err}
	}
	return nil
}

func (e *Engine) copyContents(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	err = e.copyLoop(out, in, info.Size())
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (e *Engine) copyLoop(out, in *os.File, size int64) error {
	if e.Progress == nil {
		if _, err := out.ReadFrom(in); err == nil {
			return nil
		}
		// The fast path can fail across filesystems; rewind both ends and
		// redo the whole copy with the buffered loop.
		if _, err := in.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if err := out.Truncate(0); err != nil {
			return err
		}
		if _, err := out.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}

	var r io.Reader = in
	if e.Progress != nil {
		r = progress.NewReader(in, size, filepath.Base(in.Name()), e.Progress)
	}
	buf := make([]byte, e.chunkSize())
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// BackupSet copies every disk in the set to root[/subdir], creating the
// subdirectory when needed. The first failing disk aborts the rest.
func (e *Engine) BackupSet(diskPaths []string, root, subdir string) error {
	dir := root
	if subdir != "" {
		dir = filepath.Join(root, subdir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
	}
	for _, p := range diskPaths {
		dst := filepath.Join(dir, filepath.Base(p))
		e.logger().Info("copying disk image", "src", p, "dst", dst)
		if err := e.CopyFile(p, dst); err != nil {
			return err
		}
	}
	return nil
}
