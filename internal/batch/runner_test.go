package batch

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/swfpatch/internal/apperr"
)

const structuralInput = `{"header":{"frameRate":30},"tags":[{"bounds":{"xMax":10,"xMin":0,"yMax":10,"yMin":0},"id":1,"shape":{"initialStyles":{"fill":[{"color":{"a":255,"b":0,"g":0,"r":255},"type":"solid"}],"line":[]},"records":[]},"type":"define-shape"}]}`

const transparencyPatch = `{"transparent": [1], "swf": {"modifications": []}}`
const badReferencePatch = `{"transparent": [99], "swf": {"modifications": []}}`
const noopPatch = `{"swf": {"modifications": []}}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

// memRecorder collects outcomes for assertions.
type memRecorder struct {
	entries []recorded
}

type recorded struct {
	name, status, output, errMsg string
}

func (m *memRecorder) RecordEntry(name, status, output, errMsg string) error {
	m.entries = append(m.entries, recorded{name, status, output, errMsg})
	return nil
}

func TestRunLooseEntries(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	writeFile(t, filepath.Join(dir, "patch.json"), transparencyPatch)
	writeFile(t, filepath.Join(dir, "hudmenu.json"), structuralInput)

	cfg, err := ParseConfig([]byte(`{"mods": [{"name": "hud", "config": "patch.json"}]}`), dir)
	require.NoError(t, err)

	rec := &memRecorder{}
	result, err := Run(context.Background(), cfg, outDir, "", Options{
		Inputs:   map[string]string{"hud": filepath.Join(dir, "hudmenu.json")},
		Recorder: rec,
	})
	require.NoError(t, err)

	require.Len(t, result.Succeeded, 1)
	assert.Empty(t, result.Failed)
	out := result.Succeeded[0]
	assert.Equal(t, filepath.Join(outDir, "hudmenu.json"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a":0`)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "succeeded", rec.entries[0].status)
	assert.Equal(t, out, rec.entries[0].output)

	// No temp files linger in the output directory.
	matches, err := filepath.Glob(filepath.Join(outDir, ".*tmp*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRunArchiveEntries(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	archivePath := filepath.Join(dir, "ui.zip")
	writeZip(t, archivePath, map[string]string{
		"Interface/HUDMenu.json": structuralInput,
	})
	writeFile(t, filepath.Join(dir, "patch.json"), noopPatch)

	cfg, err := ParseConfig([]byte(`{"mods": [
		{"name": "hud", "ba2": true, "files": [
			{"path": "interface/hudmenu.json", "config": "patch.json"}
		]}
	]}`), dir)
	require.NoError(t, err)

	result, err := Run(context.Background(), cfg, outDir, archivePath, Options{})
	require.NoError(t, err)

	require.Len(t, result.Succeeded, 1)
	assert.Equal(t, filepath.Join(outDir, "hudmenu.json"), result.Succeeded[0])
}

func TestRunIsolatesEntryFailures(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	writeFile(t, filepath.Join(dir, "good.json"), noopPatch)
	writeFile(t, filepath.Join(dir, "bad.json"), badReferencePatch)
	writeFile(t, filepath.Join(dir, "input-a.json"), structuralInput)
	writeFile(t, filepath.Join(dir, "input-b.json"), structuralInput)
	writeFile(t, filepath.Join(dir, "input-c.json"), structuralInput)

	cfg, err := ParseConfig([]byte(`{"mods": [
		{"name": "a", "config": "good.json"},
		{"name": "b", "config": "bad.json"},
		{"name": "c", "config": "good.json"}
	]}`), dir)
	require.NoError(t, err)

	rec := &memRecorder{}
	result, err := Run(context.Background(), cfg, outDir, "", Options{
		Inputs: map[string]string{
			"a": filepath.Join(dir, "input-a.json"),
			"b": filepath.Join(dir, "input-b.json"),
			"c": filepath.Join(dir, "input-c.json"),
		},
		Recorder: rec,
	})
	require.NoError(t, err)

	// The bad middle entry fails alone; its neighbors still run.
	assert.Len(t, result.Succeeded, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "b", result.Failed[0].Name)
	assert.True(t, apperr.Is(result.Failed[0].Err, apperr.CodeReference))

	// The failure carries its entry name.
	var ae *apperr.Error
	require.ErrorAs(t, result.Failed[0].Err, &ae)
	assert.Equal(t, "b", ae.Entry)

	require.Len(t, rec.entries, 3)
	assert.Equal(t, "failed", rec.entries[1].status)
	assert.NotEmpty(t, rec.entries[1].errMsg)
}

func TestRunRejectsOutputNameCollision(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	writeFile(t, filepath.Join(dir, "patch.json"), transparencyPatch)
	writeFile(t, filepath.Join(dir, "first", "menu.json"), structuralInput)
	writeFile(t, filepath.Join(dir, "second", "menu.json"), structuralInput)

	cfg, err := ParseConfig([]byte(`{"mods": [
		{"name": "a", "config": "patch.json"},
		{"name": "b", "config": "patch.json"}
	]}`), dir)
	require.NoError(t, err)

	result, err := Run(context.Background(), cfg, outDir, "", Options{
		Inputs: map[string]string{
			"a": filepath.Join(dir, "first", "menu.json"),
			"b": filepath.Join(dir, "second", "menu.json"),
		},
	})
	require.NoError(t, err)

	// Both inputs share the base name menu.json. The first entry wins; the
	// second fails instead of overwriting its output.
	require.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "b", result.Failed[0].Name)
	assert.True(t, apperr.Is(result.Failed[0].Err, apperr.CodeIO))
	assert.Contains(t, result.Failed[0].Err.Error(), `"a"`)

	// The winning entry's output is intact.
	data, err := os.ReadFile(filepath.Join(outDir, "menu.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a":0`)
}

func TestRunArchiveEntryWithoutArchivePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "patch.json"), noopPatch)

	cfg, err := ParseConfig([]byte(`{"mods": [
		{"name": "hud", "ba2": true, "files": [
			{"path": "interface/hudmenu.json", "config": "patch.json"}
		]}
	]}`), dir)
	require.NoError(t, err)

	result, err := Run(context.Background(), cfg, dir, "", Options{})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.True(t, apperr.Is(result.Failed[0].Err, apperr.CodeIO))
	assert.Contains(t, result.Failed[0].Err.Error(), "no archive path")
}

func TestRunUnmappedLooseEntry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "patch.json"), noopPatch)

	cfg, err := ParseConfig([]byte(`{"mods": [{"name": "hud", "config": "patch.json"}]}`), dir)
	require.NoError(t, err)

	result, err := Run(context.Background(), cfg, dir, "", Options{})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.True(t, apperr.Is(result.Failed[0].Err, apperr.CodeIO))
}

func TestRunHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "patch.json"), noopPatch)
	writeFile(t, filepath.Join(dir, "input.json"), structuralInput)

	cfg, err := ParseConfig([]byte(`{"mods": [{"name": "hud", "config": "patch.json"}]}`), dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, cfg, dir, "", Options{
		Inputs: map[string]string{"hud": filepath.Join(dir, "input.json")},
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Succeeded)
}

func TestRunOutputIsCanonical(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	writeFile(t, filepath.Join(dir, "patch.json"), noopPatch)
	writeFile(t, filepath.Join(dir, "input.json"), structuralInput)

	cfg, err := ParseConfig([]byte(`{"mods": [{"name": "hud", "config": "patch.json"}]}`), dir)
	require.NoError(t, err)

	result, err := Run(context.Background(), cfg, outDir, "", Options{
		Inputs: map[string]string{"hud": filepath.Join(dir, "input.json")},
	})
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 1)

	data, err := os.ReadFile(result.Succeeded[0])
	require.NoError(t, err)
	// The input is already canonical, so a no-op patch reproduces it.
	assert.Equal(t, structuralInput, string(data))
}
