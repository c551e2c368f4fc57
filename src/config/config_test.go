package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, time.Minute, cfg.CommitTimeout())
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "log_file: /tmp/otg.log\nconnect_uri: qemu+ssh://host/system\ncommit_timeout_sec: 300\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/otg.log", cfg.LogFile)
	assert.Equal(t, "qemu+ssh://host/system", cfg.ConnectURI)
	assert.Equal(t, 5*time.Minute, cfg.CommitTimeout())
	// Untouched keys keep their defaults.
	assert.Equal(t, "virsh", cfg.VirshBin)
	assert.Equal(t, time.Second, cfg.PollInterval())
}

func TestLoad_RejectsNonPositiveTimeouts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll_interval_sec: 0\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "must be positive")
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- bogus"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
