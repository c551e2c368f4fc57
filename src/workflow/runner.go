// Package workflow sequences the backup and transfer workflows for one
// guest against one external drive. Workflows run strictly sequentially;
// the only suspension points are the bounded polling loops for block-commit
// completion and guest start.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"virt-otg/src/chain"
	"virt-otg/src/disks"
	"virt-otg/src/mount"
	"virt-otg/src/transfer"
	"virt-otg/src/virtapi"
)

// Runner holds the collaborators of the four workflows. Fields are exported
// so tests can swap collaborators for fakes.
type Runner struct {
	Client virtapi.Client
	Domain string
	Drive  string

	Snapshots *chain.Snapshotter
	Commits   *chain.Committer
	Engine    *transfer.Engine
	Cleaner   *disks.Cleaner
	Log       *slog.Logger

	LoadMounts func() (mount.Table, error)
	Unmount    func(ctx context.Context, point string) error
	Now        func() time.Time

	StartPollInterval time.Duration
	StartTimeout      time.Duration
}

// New wires a Runner with production collaborators and default timing.
func New(client virtapi.Client, domain, drive string, log *slog.Logger) *Runner {
	return &Runner{
		Client:            client,
		Domain:            domain,
		Drive:             drive,
		Snapshots:         &chain.Snapshotter{Client: client, Log: log},
		Commits:           &chain.Committer{Client: client, Log: log},
		Engine:            &transfer.Engine{Log: log},
		Cleaner:           &disks.Cleaner{Drive: drive},
		Log:               log,
		LoadMounts:        mount.Load,
		Unmount:           mount.Unmount,
		Now:               time.Now,
		StartPollInterval: chain.DefaultPollInterval,
		StartTimeout:      chain.DefaultDeadline,
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// requireMounted resolves the drive path against the live mount table and
// returns its mount point. Every workflow calls this before mutating
// anything.
func (r *Runner) requireMounted() (string, error) {
	if _, err := os.Stat(r.Drive); err != nil {
		return "", fmt.Errorf("external drive path: %w", err)
	}
	table, err := r.LoadMounts()
	if err != nil {
		return "", err
	}
	return table.MountPoint(r.Drive)
}

// inventory re-queries the guest's live disk set. Callers must not reuse a
// set across an operation that changes the live backing files.
func (r *Runner) inventory(ctx context.Context) ([]string, error) {
	return r.Client.DiskPaths(ctx, r.Domain)
}

func (r *Runner) timestamp() string {
	return r.Now().Format("20060102_150405")
}

// waitRunning polls the guest state until it reports running. Transient
// state-query failures while the guest boots are retried until the
// deadline.
func (r *Runner) waitRunning(ctx context.Context) error {
	start := time.Now()
	for {
		state, err := r.Client.State(ctx, r.Domain)
		if err == nil && state == virtapi.StateRunning {
			return nil
		}
		if time.Since(start) > r.StartTimeout {
			return &StartTimeoutError{Domain: r.Domain, Timeout: r.StartTimeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.StartPollInterval):
		}
	}
}

// stopDomain forces the guest off to release its image locks. A guest that
// is already shut off is left alone.
func (r *Runner) stopDomain(ctx context.Context) error {
	state, err := r.Client.State(ctx, r.Domain)
	if err != nil {
		return err
	}
	if state == virtapi.StateShutOff {
		r.logger().Info("domain already shut off", "domain", r.Domain)
		return nil
	}
	return r.Client.Destroy(ctx, r.Domain)
}

// setAutostart toggles the autostart flag only when it differs from the
// desired state, so repeated runs stay idempotent.
func (r *Runner) setAutostart(ctx context.Context, enabled bool) error {
	current, err := r.Client.AutostartEnabled(ctx, r.Domain)
	if err != nil {
		return err
	}
	if current == enabled {
		return nil
	}
	return r.Client.SetAutostart(ctx, r.Domain, enabled)
}
