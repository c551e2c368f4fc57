package virtapi

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	libvirtxml "github.com/libvirt/libvirt-go-xml"
)

// VirshClient drives libvirt through the virsh binary. All parsing of virsh
// textual output lives here so a format change is a single point of repair.
type VirshClient struct {
	Bin string // virsh binary, "virsh" when empty
	URI string // optional connection URI, passed as -c
	Log *slog.Logger
}

// NewVirsh returns a client for the local libvirt daemon, or for uri when
// it is non-empty.
func NewVirsh(bin, uri string, log *slog.Logger) *VirshClient {
	return &VirshClient{Bin: bin, URI: uri, Log: log}
}

func (c *VirshClient) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

func (c *VirshClient) run(ctx context.Context, args ...string) (string, error) {
	bin := c.Bin
	if bin == "" {
		bin = "virsh"
	}
	argv := make([]string, 0, len(args)+2)
	if c.URI != "" {
		argv = append(argv, "-c", c.URI)
	}
	argv = append(argv, args...)

	c.logger().Debug("running manager command", "bin", bin, "args", argv)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, argv...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &ManagerCommandError{
			Args:   append([]string{bin}, argv...),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// DiskPaths parses the guest's XML descriptor and returns the backing file
// of every file-backed disk device, in device order.
func (c *VirshClient) DiskPaths(ctx context.Context, domain string) ([]string, error) {
	out, err := c.run(ctx, "dumpxml", domain)
	if err != nil {
		return nil, &InventoryError{Domain: domain, Err: err}
	}
	var desc libvirtxml.Domain
	if err := desc.Unmarshal(out); err != nil {
		return nil, &InventoryError{Domain: domain, Err: err}
	}
	var paths []string
	if desc.Devices != nil {
		for _, disk := range desc.Devices.Disks {
			if disk.Device != "disk" {
				continue
			}
			if disk.Source == nil || disk.Source.File == nil || disk.Source.File.File == "" {
				continue
			}
			paths = append(paths, disk.Source.File.File)
		}
	}
	return paths, nil
}

// CreateSnapshot writes a snapshot descriptor to a temporary file, feeds it
// to snapshot-create, and removes the file again whatever the outcome. Only
// the overlay files persist; --no-metadata keeps libvirt from retaining a
// snapshot record that would shadow later block commits.
func (c *VirshClient) CreateSnapshot(ctx context.Context, domain, name string, disks []DiskOverlay, quiesce bool) error {
	snap := libvirtxml.DomainSnapshot{
		Name:  name,
		Disks: &libvirtxml.DomainSnapshotDisks{},
	}
	for _, d := range disks {
		snap.Disks.Disks = append(snap.Disks.Disks, libvirtxml.DomainSnapshotDisk{
			Name:     d.Disk,
			Snapshot: "external",
			Source: &libvirtxml.DomainDiskSource{
				File: &libvirtxml.DomainDiskSourceFile{File: d.Overlay},
			},
		})
	}
	doc, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("marshal snapshot descriptor: %w", err)
	}

	tmp, err := os.CreateTemp("", name+"-*.xml")
	if err != nil {
		return fmt.Errorf("write snapshot descriptor: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot descriptor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot descriptor: %w", err)
	}

	args := []string{"snapshot-create", domain, tmp.Name(), "--disk-only", "--no-metadata"}
	if quiesce {
		args = append(args, "--quiesce")
	}
	_, err = c.run(ctx, args...)
	return err
}

func (c *VirshClient) BlockCommit(ctx context.Context, domain, path string, shallow bool) error {
	args := []string{"blockcommit", domain, path, "--active", "--pivot"}
	if shallow {
		args = append(args, "--shallow")
	}
	_, err := c.run(ctx, args...)
	return err
}

// BlockJobActive queries the per-disk block job status. virsh prints
// "No current block job for <path>" when the disk is idle and a one-line
// job description (e.g. "Block Commit: [ 52 %]") while a job runs.
func (c *VirshClient) BlockJobActive(ctx context.Context, domain, path string) (bool, error) {
	out, err := c.run(ctx, "blockjob", domain, path)
	if err != nil {
		return false, err
	}
	if out == "" || strings.Contains(out, "No current block job") {
		return false, nil
	}
	return true, nil
}

func (c *VirshClient) State(ctx context.Context, domain string) (DomainState, error) {
	out, err := c.run(ctx, "domstate", domain)
	if err != nil {
		return "", err
	}
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	return DomainState(strings.TrimSpace(out)), nil
}

func (c *VirshClient) Start(ctx context.Context, domain string) error {
	_, err := c.run(ctx, "start", domain)
	return err
}

func (c *VirshClient) Destroy(ctx context.Context, domain string) error {
	_, err := c.run(ctx, "destroy", domain)
	return err
}

// AutostartEnabled reads the "Autostart:" line of dominfo. The value is
// "enable" or "disable".
func (c *VirshClient) AutostartEnabled(ctx context.Context, domain string) (bool, error) {
	out, err := c.run(ctx, "dominfo", domain)
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Autostart:") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "Autostart:"))
		return value == "enable", nil
	}
	return false, fmt.Errorf("no autostart field in dominfo output for %s", domain)
}

func (c *VirshClient) SetAutostart(ctx context.Context, domain string, enabled bool) error {
	args := []string{"autostart", domain}
	if !enabled {
		args = append(args, "--disable")
	}
	_, err := c.run(ctx, args...)
	return err
}
