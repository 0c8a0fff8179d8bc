package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "snapgrad "+version+"\n", out)
}

func TestReplay_Default(t *testing.T) {
	out, logs, err := execute(t, "replay", "--metrics")
	require.NoError(t, err)

	assert.Contains(t, out, "SoftmaxBackward [serializable]")
	assert.Contains(t, out, "queue 1: [20 20]")
	assert.Contains(t, out, "grad a: ")
	assert.Contains(t, out, "snapgrad_checkpoint_nodes_total{op=restore} 2")
	assert.Contains(t, out, "snapgrad_checkpoint_nodes_total{op=save} 2")
	assert.Contains(t, logs, "replay matched")
}

func TestReplay_SnapshotAndInspect(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "replay.yaml")
	snapshot := filepath.Join(dir, "replay.bsnp")

	_, _, err := execute(t, "init", cfgPath)
	require.NoError(t, err)

	_, _, err = execute(t, "replay", "-c", cfgPath, "--snapshot", snapshot, "--dtype", "float64", "--log-level", "warn")
	require.NoError(t, err)

	out, _, err := execute(t, "inspect", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "format:   v1")
	assert.Contains(t, out, "data:     96 bytes in 3 blobs")
	assert.Contains(t, out, "blob 1: offset=64 size=32 payload=24")
}

func TestReplay_BadFlags(t *testing.T) {
	_, _, err := execute(t, "replay", "--dtype", "int8")
	assert.Error(t, err)

	_, _, err = execute(t, "inspect", filepath.Join(t.TempDir(), "missing.bsnp"))
	assert.Error(t, err)
}
