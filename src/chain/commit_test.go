package chain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"virt-otg/src/virtapi"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCommit_OnlySuffixReturnsMatchingSubsequence(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.qcow2.snap")
	b := filepath.Join(dir, "b.qcow2")
	c := filepath.Join(dir, "c.qcow2.snap")
	for _, p := range []string{a, b, c} {
		touch(t, p)
	}

	fake := virtapi.NewFake()
	fake.AddDomain("web", virtapi.StateRunning, a, b, c)

	committer := &Committer{Client: fake, Log: testLogger(), PollInterval: time.Millisecond, Deadline: time.Second}
	committed, err := committer.Commit(context.Background(), "web", []string{a, b, c}, false, ".snap")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if want := []string{a, c}; !reflect.DeepEqual(committed, want) {
		t.Fatalf("committed %v, want %v", committed, want)
	}
	if len(fake.CommitCalls) != 2 {
		t.Fatalf("expected 2 manager calls, got %d", len(fake.CommitCalls))
	}
	// The unmatched disk must not have been touched.
	paths, _ := fake.DiskPaths(context.Background(), "web")
	if paths[1] != b {
		t.Fatalf("disk without suffix changed: %s", paths[1])
	}
}

func TestCommit_TimeoutAbortsRemainingDisks(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.qcow2.snap")
	b := filepath.Join(dir, "b.qcow2.snap")
	touch(t, a)
	touch(t, b)

	fake := virtapi.NewFake()
	fake.AddDomain("web", virtapi.StateRunning, a, b)
	fake.StuckJobs[a] = true

	committer := &Committer{Client: fake, Log: testLogger(), PollInterval: time.Millisecond, Deadline: 10 * time.Millisecond}
	committed, err := committer.Commit(context.Background(), "web", []string{a, b}, false, ".snap")

	var timeout *CommitTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected CommitTimeoutError, got %v", err)
	}
	if timeout.Path != a {
		t.Fatalf("timeout reported for wrong disk: %s", timeout.Path)
	}
	if len(committed) != 0 {
		t.Fatalf("no disk should have completed, got %v", committed)
	}
	if len(fake.CommitCalls) != 1 {
		t.Fatalf("disk after the timed-out one must not be attempted, got %d calls", len(fake.CommitCalls))
	}
}

func TestCommit_TimeoutKeepsEarlierDisksInResult(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.qcow2.snap")
	b := filepath.Join(dir, "b.qcow2.snap")
	touch(t, a)
	touch(t, b)

	fake := virtapi.NewFake()
	fake.AddDomain("web", virtapi.StateRunning, a, b)
	fake.StuckJobs[b] = true

	committer := &Committer{Client: fake, Log: testLogger(), PollInterval: time.Millisecond, Deadline: 10 * time.Millisecond}
	committed, err := committer.Commit(context.Background(), "web", []string{a, b}, false, "")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if want := []string{a}; !reflect.DeepEqual(committed, want) {
		t.Fatalf("committed %v, want %v", committed, want)
	}
}

func TestCommit_WaitsOutSlowJob(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.qcow2.snap")
	touch(t, a)

	fake := virtapi.NewFake()
	fake.AddDomain("web", virtapi.StateRunning, a)
	fake.JobPolls = 3

	committer := &Committer{Client: fake, Log: testLogger(), PollInterval: time.Millisecond, Deadline: time.Second}
	committed, err := committer.Commit(context.Background(), "web", []string{a}, true, "")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if len(committed) != 1 {
		t.Fatalf("expected one committed disk, got %v", committed)
	}
	if !fake.CommitCalls[0].Shallow {
		t.Fatal("shallow flag not passed through")
	}
}
