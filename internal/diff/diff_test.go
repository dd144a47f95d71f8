package diff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/swfpatch/internal/apperr"
)

func TestExecToolDefault(t *testing.T) {
	assert.Equal(t, DefaultTool, Exec{}.tool())
	assert.Equal(t, "/opt/xdelta3", Exec{Tool: "/opt/xdelta3"}.tool())
}

func TestExecMissingToolFails(t *testing.T) {
	e := Exec{Tool: filepath.Join(t.TempDir(), "no-such-tool")}
	_, err := e.Create([]byte("a"), []byte("b"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeIO))
}

// fakeDiffer concatenates inputs so the file helpers are observable without
// an external tool.
type fakeDiffer struct{}

func (fakeDiffer) Create(original, edited []byte) ([]byte, error) {
	return append(append([]byte("patch:"), original...), edited...), nil
}

func (fakeDiffer) Apply(target, patch []byte) ([]byte, error) {
	return append(append([]byte("patched:"), target...), patch...), nil
}

func TestCreatePatchFile(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "menu.swf")
	edited := filepath.Join(dir, "menu.edited.swf")
	require.NoError(t, os.WriteFile(orig, []byte("AAA"), 0o644))
	require.NoError(t, os.WriteFile(edited, []byte("BBB"), 0o644))

	out, err := CreatePatchFile(fakeDiffer{}, orig, edited, dir, "menu.swf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "menu.swf.xdelta"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "patch:AAABBB", string(data))
}

func TestApplyPatchFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "menu.swf")
	patch := filepath.Join(dir, "menu.swf.xdelta")
	require.NoError(t, os.WriteFile(target, []byte("AAA"), 0o644))
	require.NoError(t, os.WriteFile(patch, []byte("PPP"), 0o644))

	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	out, err := ApplyPatchFile(fakeDiffer{}, target, patch, outDir, "menu.swf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "menu.swf"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "patched:AAAPPP", string(data))
}

func TestCreatePatchFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := CreatePatchFile(fakeDiffer{}, filepath.Join(dir, "missing"), filepath.Join(dir, "also-missing"), dir, "x")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeIO))
}
