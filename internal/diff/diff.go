// Package diff is the boundary to the opaque binary-diff service. The diff
// format and algorithm live in an external tool; this package only shells
// out to it.
package diff

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/modkit/swfpatch/internal/apperr"
)

// Differ creates and applies binary patches.
type Differ interface {
	// Create computes a patch turning original into edited.
	Create(original, edited []byte) ([]byte, error)
	// Apply applies patch to target.
	Apply(target, patch []byte) ([]byte, error)
}

// DefaultTool is the external delta tool invoked by Exec.
const DefaultTool = "xdelta3"

// Exec is a Differ backed by an external xdelta3-compatible executable.
type Exec struct {
	// Tool is the executable name or path. Empty means DefaultTool.
	Tool string
}

func (e Exec) tool() string {
	if e.Tool == "" {
		return DefaultTool
	}
	return e.Tool
}

// Create implements Differ.
func (e Exec) Create(original, edited []byte) ([]byte, error) {
	return e.run(edited, original, "-e")
}

// Apply implements Differ.
func (e Exec) Apply(target, patch []byte) ([]byte, error) {
	return e.run(patch, target, "-d")
}

// run invokes the tool with a source file: xdelta3 [-e|-d] -s <source>
// <input> <output>, staging everything in a private temp directory.
func (e Exec) run(input, source []byte, mode string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "swfpatch-diff-")
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "create diff workspace")
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "input")
	sourcePath := filepath.Join(dir, "source")
	outputPath := filepath.Join(dir, "output")
	if err := os.WriteFile(inputPath, input, 0o600); err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "stage diff input")
	}
	if err := os.WriteFile(sourcePath, source, 0o600); err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "stage diff source")
	}

	cmd := exec.Command(e.tool(), mode, "-f", "-s", sourcePath, inputPath, outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "%s failed: %s", e.tool(), string(out))
	}

	result, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "read diff output")
	}
	return result, nil
}

// CreatePatchFile diffs two files and writes <originalName>.xdelta into
// outputDir, returning the patch path.
func CreatePatchFile(d Differ, originalPath, editedPath, outputDir, originalName string) (string, error) {
	original, err := os.ReadFile(originalPath)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeIO, err, "read original file").WithPath(originalPath)
	}
	edited, err := os.ReadFile(editedPath)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeIO, err, "read edited file").WithPath(editedPath)
	}
	patch, err := d.Create(original, edited)
	if err != nil {
		return "", err
	}
	outPath := filepath.Join(outputDir, fmt.Sprintf("%s.xdelta", originalName))
	if err := os.WriteFile(outPath, patch, 0o644); err != nil {
		return "", apperr.Wrap(apperr.CodeIO, err, "write patch file").WithPath(outPath)
	}
	return outPath, nil
}

// ApplyPatchFile applies a patch file to a target file and writes the
// result as outputDir/<targetName>, returning the output path.
func ApplyPatchFile(d Differ, targetPath, patchPath, outputDir, targetName string) (string, error) {
	target, err := os.ReadFile(targetPath)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeIO, err, "read file to patch").WithPath(targetPath)
	}
	patch, err := os.ReadFile(patchPath)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeIO, err, "read patch file").WithPath(patchPath)
	}
	out, err := d.Apply(target, patch)
	if err != nil {
		return "", err
	}
	outPath := filepath.Join(outputDir, targetName)
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return "", apperr.Wrap(apperr.CodeIO, err, "write patched file").WithPath(outPath)
	}
	return outPath, nil
}
