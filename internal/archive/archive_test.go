package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/swfpatch/internal/apperr"
)

func writeTestArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.zip")
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
	return path
}

func TestOpenAndRead(t *testing.T) {
	path := writeTestArchive(t, map[string]string{
		"interface/hudmenu.json": "hud-bytes",
		"interface/mapmenu.json": "map-bytes",
	})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	data, err := c.Read("interface/hudmenu.json")
	require.NoError(t, err)
	assert.Equal(t, "hud-bytes", string(data))
}

func TestReadIsCaseAndSeparatorInsensitive(t *testing.T) {
	path := writeTestArchive(t, map[string]string{
		"Interface/HUDMenu.json": "hud-bytes",
	})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	for _, name := range []string{
		"interface/hudmenu.json",
		"INTERFACE/hudmenu.JSON",
		"Interface\\HUDMenu.json",
		"/interface/hudmenu.json",
	} {
		data, err := c.Read(name)
		require.NoError(t, err, name)
		assert.Equal(t, "hud-bytes", string(data), name)
	}
}

func TestReadMissingEntry(t *testing.T) {
	path := writeTestArchive(t, map[string]string{"a.json": "x"})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Read("missing.json")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeIO))
}

func TestOpenMissingArchive(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.zip"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeIO))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "interface/hudmenu.json", NormalizePath("/Interface\\HUDMenu.json"))
	// NFD decomposed input matches its NFC form.
	assert.Equal(t, NormalizePath("café.json"), NormalizePath("café.json"))
}

func TestSplitCombined(t *testing.T) {
	cp, ok := SplitCombined("mods/ui.ba2//interface/hudmenu.swf")
	require.True(t, ok)
	assert.Equal(t, "mods/ui.ba2", cp.ArchivePath)
	assert.Equal(t, "interface/hudmenu.swf", cp.InnerPath)

	_, ok = SplitCombined("plain/path.swf")
	assert.False(t, ok)
	_, ok = SplitCombined("//leading.swf")
	assert.False(t, ok)
	_, ok = SplitCombined("trailing.ba2//")
	assert.False(t, ok)

	assert.True(t, IsCombinedPath("a.ba2//b.swf"))
	assert.False(t, IsCombinedPath("a/b.swf"))
}

func TestReadConcurrent(t *testing.T) {
	path := writeTestArchive(t, map[string]string{"a.json": "alpha", "b.json": "beta"})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		name, want := "a.json", "alpha"
		if i%2 == 1 {
			name, want = "b.json", "beta"
		}
		go func(name, want string) {
			data, err := c.Read(name)
			if err == nil && string(data) != want {
				err = assert.AnError
			}
			done <- err
		}(name, want)
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, <-done)
	}
}
