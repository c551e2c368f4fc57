package mount

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Unmount detaches the filesystem mounted at point so the operator can
// remove the drive.
func Unmount(ctx context.Context, point string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "umount", point)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("umount %s: %w: %s", point, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
