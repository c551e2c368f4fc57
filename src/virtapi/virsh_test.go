package virtapi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// stubVirsh writes an executable shell script that plays the virsh role for
// one test, so output parsing runs against the real exec path.
func stubVirsh(t *testing.T, script string) *VirshClient {
	t.Helper()
	path := filepath.Join(t.TempDir(), "virsh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return NewVirsh(path, "", nil)
}

const domainXML = `<domain type='kvm'>
  <name>web</name>
  <devices>
    <disk type='file' device='disk'>
      <source file='/vm/a.qcow2'/>
      <target dev='vda'/>
    </disk>
    <disk type='file' device='disk'>
      <source file='/vm/b.qcow2.snap'/>
      <target dev='vdb'/>
    </disk>
    <disk type='file' device='cdrom'>
      <source file='/iso/install.iso'/>
      <target dev='sda'/>
    </disk>
  </devices>
</domain>`

func TestDiskPaths_ParsesFileBackedDisksInOrder(t *testing.T) {
	c := stubVirsh(t, `cat <<'EOF'
`+domainXML+`
EOF`)
	paths, err := c.DiskPaths(context.Background(), "web")
	if err != nil {
		t.Fatalf("disk paths failed: %v", err)
	}
	want := []string{"/vm/a.qcow2", "/vm/b.qcow2.snap"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
}

func TestState_FirstLineOnly(t *testing.T) {
	c := stubVirsh(t, `printf 'shut off\n\n'`)
	state, err := c.State(context.Background(), "web")
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if state != StateShutOff {
		t.Fatalf("got %q", state)
	}
}

func TestBlockJobActive(t *testing.T) {
	idle := stubVirsh(t, `echo 'No current block job for /vm/a.qcow2.snap'`)
	active, err := idle.BlockJobActive(context.Background(), "web", "/vm/a.qcow2.snap")
	if err != nil || active {
		t.Fatalf("idle disk reported active: %v, %v", active, err)
	}

	busy := stubVirsh(t, `echo 'Block Commit: [ 52 %]'`)
	active, err = busy.BlockJobActive(context.Background(), "web", "/vm/a.qcow2.snap")
	if err != nil || !active {
		t.Fatalf("running job reported idle: %v, %v", active, err)
	}
}

func TestAutostartEnabled_ParsesDominfo(t *testing.T) {
	c := stubVirsh(t, `cat <<'EOF'
Id:             3
Name:           web
State:          running
Autostart:      enable
EOF`)
	enabled, err := c.AutostartEnabled(context.Background(), "web")
	if err != nil {
		t.Fatalf("autostart query failed: %v", err)
	}
	if !enabled {
		t.Fatal("expected autostart enabled")
	}

	missing := stubVirsh(t, `echo 'Name: web'`)
	if _, err := missing.AutostartEnabled(context.Background(), "web"); err == nil {
		t.Fatal("dominfo without autostart field must fail")
	}
}

func TestRun_FailureCarriesStderr(t *testing.T) {
	c := stubVirsh(t, `echo 'error: failed to get domain web' >&2; exit 1`)
	_, err := c.State(context.Background(), "web")
	var cmdErr *ManagerCommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected ManagerCommandError, got %v", err)
	}
	if cmdErr.Stderr != "error: failed to get domain web" {
		t.Fatalf("stderr not captured: %q", cmdErr.Stderr)
	}
}

func TestDiskPaths_WrapsManagerFailure(t *testing.T) {
	c := stubVirsh(t, `exit 1`)
	_, err := c.DiskPaths(context.Background(), "web")
	var invErr *InventoryError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InventoryError, got %v", err)
	}
}
