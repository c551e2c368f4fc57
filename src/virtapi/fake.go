package virtapi

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FakeClient is an in-memory manager for unit tests. Snapshot and commit
// calls mutate real files (overlays are touched, merged overlays are left
// orphaned) so workflows can be exercised against a temp directory exactly
// as they would run against a host.
type FakeClient struct {
	DomainsMap map[string]*FakeDomain

	SnapshotCalls []SnapshotCall
	CommitCalls   []CommitCall

	// FailSnapshot makes every CreateSnapshot call fail.
	FailSnapshot bool
	// RejectQuiesce makes CreateSnapshot fail while quiesce is requested,
	// mimicking a guest without a functioning agent.
	RejectQuiesce bool
	// JobPolls is how many BlockJobActive polls report a commit as still
	// running before it clears. Zero means commits complete immediately.
	JobPolls int
	// StuckJobs marks disk paths whose block job never clears.
	StuckJobs map[string]bool
	// StartHangs keeps the domain out of the running state after Start.
	StartHangs bool

	jobs map[string]int
}

// FakeDomain models one guest: its power state, autostart flag, and the
// ordered live backing file per disk.
type FakeDomain struct {
	Name      string
	State     DomainState
	Autostart bool
	Disks     []string
}

type SnapshotCall struct {
	Domain  string
	Name    string
	Disks   []DiskOverlay
	Quiesce bool
}

type CommitCall struct {
	Domain  string
	Path    string
	Shallow bool
}

func NewFake() *FakeClient {
	return &FakeClient{
		DomainsMap: map[string]*FakeDomain{},
		StuckJobs:  map[string]bool{},
		jobs:       map[string]int{},
	}
}

// AddDomain registers a guest with the given live disk paths.
func (f *FakeClient) AddDomain(name string, state DomainState, paths ...string) *FakeDomain {
	d := &FakeDomain{Name: name, State: state, Disks: append([]string(nil), paths...)}
	f.DomainsMap[name] = d
	return d
}

func (f *FakeClient) domain(name string) (*FakeDomain, error) {
	d, ok := f.DomainsMap[name]
	if !ok {
		return nil, &InventoryError{Domain: name, Err: errors.New("domain not found")}
	}
	return d, nil
}

func (f *FakeClient) DiskPaths(ctx context.Context, domain string) ([]string, error) {
	d, err := f.domain(domain)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), d.Disks...), nil
}

func (f *FakeClient) CreateSnapshot(ctx context.Context, domain, name string, disks []DiskOverlay, quiesce bool) error {
	d, err := f.domain(domain)
	if err != nil {
		return err
	}
	f.SnapshotCalls = append(f.SnapshotCalls, SnapshotCall{Domain: domain, Name: name, Disks: disks, Quiesce: quiesce})
	if f.FailSnapshot {
		return &ManagerCommandError{Args: []string{"virsh", "snapshot-create", domain}, Stderr: "internal error", Err: exitErr()}
	}
	if quiesce && f.RejectQuiesce {
		return &ManagerCommandError{Args: []string{"virsh", "snapshot-create", domain}, Stderr: "argument unsupported: QEMU guest agent is not configured", Err: exitErr()}
	}
	// All disks or none: touch every overlay, then pivot the live paths.
	for _, ov := range disks {
		if err := os.WriteFile(ov.Overlay, nil, 0o644); err != nil {
			return err
		}
	}
	for i, cur := range d.Disks {
		for _, ov := range disks {
			if cur == ov.Disk {
				d.Disks[i] = ov.Overlay
			}
		}
	}
	return nil
}

func (f *FakeClient) BlockCommit(ctx context.Context, domain, path string, shallow bool) error {
	d, err := f.domain(domain)
	if err != nil {
		return err
	}
	f.CommitCalls = append(f.CommitCalls, CommitCall{Domain: domain, Path: path, Shallow: shallow})
	for i, cur := range d.Disks {
		if cur != path {
			continue
		}
		// Merge and pivot: the guest writes to the overlay's backing file
		// again. The overlay file itself stays behind on disk, orphaned.
		d.Disks[i] = strings.TrimSuffix(path, filepath.Ext(path))
		if f.JobPolls > 0 {
			f.jobs[path] = f.JobPolls
		}
		return nil
	}
	return &ManagerCommandError{Args: []string{"virsh", "blockcommit", domain, path}, Stderr: "invalid argument: disk not found", Err: exitErr()}
}

func (f *FakeClient) BlockJobActive(ctx context.Context, domain, path string) (bool, error) {
	if _, err := f.domain(domain); err != nil {
		return false, err
	}
	if f.StuckJobs[path] {
		return true, nil
	}
	if n := f.jobs[path]; n > 0 {
		f.jobs[path] = n - 1
		return true, nil
	}
	return false, nil
}

func (f *FakeClient) State(ctx context.Context, domain string) (DomainState, error) {
	d, err := f.domain(domain)
	if err != nil {
		return "", err
	}
	return d.State, nil
}

func (f *FakeClient) Start(ctx context.Context, domain string) error {
	d, err := f.domain(domain)
	if err != nil {
		return err
	}
	if !f.StartHangs {
		d.State = StateRunning
	}
	return nil
}

func (f *FakeClient) Destroy(ctx context.Context, domain string) error {
	d, err := f.domain(domain)
	if err != nil {
		return err
	}
	if d.State == StateShutOff {
		return &ManagerCommandError{Args: []string{"virsh", "destroy", domain}, Stderr: "domain is not running", Err: exitErr()}
	}
	d.State = StateShutOff
	return nil
}

func (f *FakeClient) AutostartEnabled(ctx context.Context, domain string) (bool, error) {
	d, err := f.domain(domain)
	if err != nil {
		return false, err
	}
	return d.Autostart, nil
}

func (f *FakeClient) SetAutostart(ctx context.Context, domain string, enabled bool) error {
	d, err := f.domain(domain)
	if err != nil {
		return err
	}
	d.Autostart = enabled
	return nil
}

func exitErr() error { return &exec.ExitError{} }
