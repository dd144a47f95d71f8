package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInputFlags(t *testing.T) {
	m, err := parseInputFlags([]string{"hud=/in/hud.json", "map=/in/map.json"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"hud": "/in/hud.json", "map": "/in/map.json"}, m)

	m, err = parseInputFlags(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	for _, bad := range []string{"nopath", "=path", "name="} {
		_, err := parseInputFlags([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	input := filepath.Join(dir, "hudmenu.json")
	require.NoError(t, os.WriteFile(input, []byte(testMovie), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "patch.json"),
		[]byte(`{"swf": {"modifications": []}}`), 0o644))
	config := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(config,
		[]byte(`{"mods": [{"name": "hud", "config": "patch.json"}]}`), 0o644))

	out, _, err := execute(t, "batch",
		"-c", config, "-o", outDir,
		"--input", "hud="+input)
	require.NoError(t, err)
	assert.Contains(t, out, "1 succeeded, 0 failed")

	_, err = os.Stat(filepath.Join(outDir, "hudmenu.json"))
	assert.NoError(t, err)
}

func TestBatchCommandPartialFailureExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	input := filepath.Join(dir, "hudmenu.json")
	require.NoError(t, os.WriteFile(input, []byte(testMovie), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.json"),
		[]byte(`{"swf": {"modifications": []}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"),
		[]byte(`{"transparent": [99], "swf": {"modifications": []}}`), 0o644))
	config := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(config, []byte(`{"mods": [
		{"name": "good", "config": "good.json"},
		{"name": "bad", "config": "bad.json"}
	]}`), 0o644))

	out, _, err := execute(t, "batch",
		"-c", config, "-o", outDir,
		"--input", "good="+input,
		"--input", "bad="+input)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "1 succeeded, 1 failed")
}

func TestBatchCommandRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	input := filepath.Join(dir, "hudmenu.json")
	require.NoError(t, os.WriteFile(input, []byte(testMovie), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "patch.json"),
		[]byte(`{"swf": {"modifications": []}}`), 0o644))
	config := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(config,
		[]byte(`{"mods": [{"name": "hud", "config": "patch.json"}]}`), 0o644))

	dbPath := filepath.Join(dir, "history.db")
	_, _, err := execute(t, "batch",
		"-c", config, "-o", outDir,
		"--input", "hud="+input,
		"--history", dbPath)
	require.NoError(t, err)

	out, _, err := execute(t, "history", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "hud")
	assert.Contains(t, out, "✓")
}

func TestLoadGeometryOptions(t *testing.T) {
	opts, err := loadGeometryOptions("")
	require.NoError(t, err)
	assert.Equal(t, 0.25, opts.Tolerance)
	assert.Equal(t, int64(0), opts.Padding)

	path := writeTemp(t, "options.yaml", "tolerance: 1.5\npadding: 40\n")
	opts, err = loadGeometryOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 1.5, opts.Tolerance)
	assert.Equal(t, int64(40), opts.Padding)

	bad := writeTemp(t, "bad.yaml", "padding: -1\n")
	_, err = loadGeometryOptions(bad)
	assert.Error(t, err)

	_, err = loadGeometryOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
