package chain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"virt-otg/src/virtapi"
)

const (
	// DefaultPollInterval is how often a running block job is re-checked.
	DefaultPollInterval = time.Second
	// DefaultDeadline bounds how long one disk's commit may take. The merge
	// is asynchronous in the manager and offers no push notification, so
	// bounded polling is the only portable completion signal.
	DefaultDeadline = 60 * time.Second
)

// Committer merges active overlay chains back into their bases.
type Committer struct {
	Client       virtapi.Client
	Log          *slog.Logger
	PollInterval time.Duration // DefaultPollInterval when zero
	Deadline     time.Duration // DefaultDeadline when zero
}

func (c *Committer) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

// Commit live-merges each disk's overlay chain into its base and pivots the
// guest back to the base. When onlySuffix is non-empty, disks without that
// suffix are skipped and no manager call is issued for them. shallow
// restricts the merge to one chain level. A disk whose job is still running
// at the deadline aborts the whole operation; disks after it are not
// attempted. The merged-away overlay files stay on disk and must be removed
// by the caller.
//
// The returned slice holds the paths committed so far, in input order, and
// is valid even when an error is returned.
func (c *Committer) Commit(ctx context.Context, domain string, diskPaths []string, shallow bool, onlySuffix string) ([]string, error) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := c.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	var committed []string
	for _, path := range diskPaths {
		if onlySuffix != "" && !strings.HasSuffix(path, onlySuffix) {
			continue
		}
		c.logger().Info("committing overlay chain", "domain", domain, "disk", path, "shallow", shallow)
		if err := c.Client.BlockCommit(ctx, domain, path, shallow); err != nil {
			return committed, fmt.Errorf("block commit %s: %w", path, err)
		}
		if err := c.waitIdle(ctx, domain, path, interval, deadline); err != nil {
			return committed, err
		}
		committed = append(committed, path)
	}
	return committed, nil
}

func (c *Committer) waitIdle(ctx context.Context, domain, path string, interval, deadline time.Duration) error {
	start := time.Now()
	for {
		active, err := c.Client.BlockJobActive(ctx, domain, path)
		if err != nil {
			return fmt.Errorf("poll block job on %s: %w", path, err)
		}
		if !active {
			return nil
		}
		if time.Since(start) > deadline {
			return &CommitTimeoutError{Domain: domain, Path: path, Deadline: deadline}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
