package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesJSONFileAndTextConsole(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "log", "otg.log")
	var console bytes.Buffer

	log, f, err := New(logFile, &console)
	if err != nil {
		t.Fatalf("logger setup failed: %v", err)
	}
	defer f.Close()

	log.Info("backup started", "domain", "web")
	log.Debug("polling block job", "path", "/vm/a.qcow2.snap")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("file should carry debug records too, got %d lines", len(lines))
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("file record is not JSON: %v", err)
	}
	if rec["domain"] != "web" {
		t.Fatalf("attribute lost: %v", rec)
	}

	out := console.String()
	if !strings.Contains(out, "backup started") {
		t.Fatalf("console missed the info record: %q", out)
	}
	if strings.Contains(out, "polling block job") {
		t.Fatalf("console must not receive debug records: %q", out)
	}
}
