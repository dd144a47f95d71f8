// Package archive reads target assets out of a read-only, indexed bundle of
// named files. Inner paths are matched case-insensitively with separators
// and Unicode form normalized, matching how the game container indexes its
// entries.
package archive

import (
	"archive/zip"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/modkit/swfpatch/internal/apperr"
)

// Container is a read-only archive opened once per batch run. Read may be
// called concurrently; Close releases the handle on every exit path.
type Container interface {
	// Read returns the bytes of the named inner file.
	Read(innerPath string) ([]byte, error)
	// Close releases the archive handle.
	Close() error
}

// Open opens the archive at path. The zip-backed container is the reference
// implementation; other container formats plug in behind Container.
func Open(path string) (Container, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "open archive").WithPath(path)
	}
	c := &zipContainer{r: r, index: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		c.index[NormalizePath(f.Name)] = f
	}
	return c, nil
}

type zipContainer struct {
	r     *zip.ReadCloser
	index map[string]*zip.File

	// Serializes access to the underlying reader; zip decompression
	// streams are not safe for concurrent use of the same file handle.
	mu sync.Mutex
}

func (c *zipContainer) Read(innerPath string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.index[NormalizePath(innerPath)]
	if !ok {
		return nil, apperr.New(apperr.CodeIO, "file not found in archive").WithPath(innerPath)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "open archive entry").WithPath(innerPath)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "read archive entry").WithPath(innerPath)
	}
	return data, nil
}

func (c *zipContainer) Close() error {
	return c.r.Close()
}

// NormalizePath canonicalizes an inner archive path: NFC Unicode form,
// forward slashes, lower case, no leading slash.
func NormalizePath(p string) string {
	p = norm.NFC.String(p)
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	return strings.ToLower(p)
}

// CombinedPath is an "archive.ext//inner/path" reference to a file inside
// an archive.
type CombinedPath struct {
	ArchivePath string
	InnerPath   string
}

// SplitCombined parses an "archive//inner" reference. Returns false when
// the string is a plain file path.
func SplitCombined(path string) (CombinedPath, bool) {
	archivePath, innerPath, found := strings.Cut(path, "//")
	if !found || archivePath == "" || innerPath == "" {
		return CombinedPath{}, false
	}
	return CombinedPath{ArchivePath: archivePath, InnerPath: innerPath}, true
}

// IsCombinedPath reports whether path references a file inside an archive.
func IsCombinedPath(path string) bool {
	_, ok := SplitCombined(path)
	return ok
}
