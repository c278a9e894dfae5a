package cmd

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/encodeous/ripsim/state"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseRunArgs(t *testing.T) {
	tests := []struct {
		args   []string
		pairs  int
		enable bool
		err    bool
	}{
		{args: nil},
		{args: []string{"3"}, pairs: 3},
		{args: []string{"3", "enable"}, pairs: 3, enable: true},
		{args: []string{"0"}, err: true},
		{args: []string{"-2"}, err: true},
		{args: []string{"three"}, err: true},
		{args: []string{"3", "disable"}, err: true},
		{args: []string{"3", "enable", "now"}, err: true},
	}
	for _, tt := range tests {
		pairs, enable, err := parseRunArgs(tt.args)
		if tt.err {
			assert.ErrorIs(t, err, errUsage, "args %v", tt.args)
			continue
		}
		require.NoError(t, err, "args %v", tt.args)
		assert.Equal(t, tt.pairs, pairs)
		assert.Equal(t, tt.enable, enable)
	}
}

func TestRunRejectsBadArgs(t *testing.T) {
	_, err := executeCmd(t, "run", "0")
	assert.Error(t, err)
	_, err = executeCmd(t, "run", "2", "maybe")
	assert.Error(t, err)
	_, err = executeCmd(t, "run", "1", "enable", "extra")
	assert.Error(t, err)
	// neither pairs nor a topology file
	_, err = executeCmd(t, "run", "--topology", "", "--tick", "10ms")
	assert.ErrorContains(t, err, "either a pair count or a topology file is required")
}

func TestRunUntilAllFail(t *testing.T) {
	out, err := executeCmd(t, "run", "1", "enable",
		"--failure-probability", "1", "--tick", "10ms", "--start-delay", "0s", "--ticks", "0", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "10.0.1.1")
	assert.Contains(t, out, "10.0.2.1 has failed!")
	assert.Contains(t, out, "All routers have failed. Simulation terminated.")
}

func TestRunTickLimit(t *testing.T) {
	out, err := executeCmd(t, "run", "2",
		"--tick", "10ms", "--start-delay", "0s", "--ticks", "3", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulation stopped with 0 of 4 routers failed.")
	assert.NotContains(t, out, "has failed!")
}

func TestRunFromTopologyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.yaml")
	_, err := executeCmd(t, "topology", "2", "--seed", "5", "--output", path)
	require.NoError(t, err)

	out, err := executeCmd(t, "run", "--topology", path,
		"--tick", "10ms", "--start-delay", "0s", "--ticks", "2", "--seed", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "10.0.4.1")
	assert.Contains(t, out, "Simulation stopped with 0 of 4 routers failed.")
}

func TestTopologyCommand(t *testing.T) {
	out, err := executeCmd(t, "topology", "3", "--seed", "9", "--output", "")
	require.NoError(t, err)

	var cfg state.TopologyCfg
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Len(t, cfg.Routers, 6)
	assert.Len(t, cfg.Links, 6)

	// the same seed generates the same weights
	again, err := executeCmd(t, "topology", "3", "--seed", "9", "--output", "")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = executeCmd(t, "topology", "zero")
	assert.Error(t, err)
}
