package disks

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestTrimTmp(t *testing.T) {
	if got := TrimTmp("/vm/a.qcow2.snap.tmp"); got != "/vm/a.qcow2.snap" {
		t.Fatalf("unexpected trim result: %s", got)
	}
	if got := TrimTmp("/vm/a.qcow2.snap"); got != "/vm/a.qcow2.snap" {
		t.Fatalf("path without suffix changed: %s", got)
	}
}

func TestFilter_KeepsOrder(t *testing.T) {
	in := []string{"/vm/c.qcow2.snap", "/vm/a.qcow2", "/vm/b.qcow2.snap"}
	got := Filter(in, SuffixSnap)
	want := []string{"/vm/c.qcow2.snap", "/vm/b.qcow2.snap"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAnyWithSuffix(t *testing.T) {
	if AnyWithSuffix([]string{"/vm/a.qcow2"}, SuffixTmp) {
		t.Fatal("unexpected match")
	}
	if !AnyWithSuffix([]string{"/vm/a.qcow2", "/vm/b.qcow2.tmp"}, SuffixTmp) {
		t.Fatal("expected match")
	}
}

func TestDestPaths(t *testing.T) {
	got := DestPaths([]string{"/vm/a.qcow2", "/data/b.qcow2"}, "/mnt/ext")
	want := []string{
		filepath.Join("/mnt/ext", "a.qcow2"),
		filepath.Join("/mnt/ext", "b.qcow2"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
