package batch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/modkit/swfpatch/internal/apperr"
	"github.com/modkit/swfpatch/internal/archive"
	"github.com/modkit/swfpatch/internal/codec"
	"github.com/modkit/swfpatch/internal/engine"
	"github.com/modkit/swfpatch/internal/patchdoc"
)

// Result aggregates one batch run. Succeeded holds output paths in input
// order; Failed holds each failing entry with its first error.
type Result struct {
	Succeeded []string
	Failed    []Failure
}

// Failure names one failing entry and why it failed.
type Failure struct {
	Name string
	Err  error
}

// Recorder receives per-entry outcomes for an optional run history.
type Recorder interface {
	RecordEntry(name, status, output, errMsg string) error
}

// Options configures a batch run.
type Options struct {
	// Codec decodes and encodes asset bytes. Nil means the structural JSON
	// codec.
	Codec codec.Codec

	// Engine configures the per-file applicator.
	Engine engine.Options

	// Inputs maps entry names to input file paths for loose-file (non
	// archive) entries.
	Inputs map[string]string

	// Recorder, when set, receives every entry outcome.
	Recorder Recorder
}

func (o Options) codec() codec.Codec {
	if o.Codec != nil {
		return o.Codec
	}
	return codec.JSON()
}

// Run processes every catalog entry in order, isolating failures. The
// archive, when any entry needs one, is opened once for the whole run and
// closed on every exit path. Cancellation is honored between entries: the
// current entry always completes or rolls back.
func Run(ctx context.Context, cfg *Config, outputDir, archivePath string, opts Options) (*Result, error) {
	result := &Result{}

	var container archive.Container
	defer func() {
		if container != nil {
			if err := container.Close(); err != nil {
				slog.Error("closing archive", "error", err)
			}
		}
	}()

	// Output names derive from input base names, so distinct entries can
	// collide on the same final path. The later entry fails instead of
	// silently overwriting the earlier one's output.
	written := map[string]string{}
	claimOutput := func(outPath, entryName string) error {
		if prev, ok := written[outPath]; ok {
			return apperr.New(apperr.CodeIO,
				"output name collides with entry %q", prev).WithPath(outPath)
		}
		written[outPath] = entryName
		return nil
	}

	openArchive := func() (archive.Container, error) {
		if container != nil {
			return container, nil
		}
		if archivePath == "" {
			return nil, apperr.New(apperr.CodeIO, "entry needs an archive, but no archive path was supplied")
		}
		c, err := archive.Open(archivePath)
		if err != nil {
			return nil, err
		}
		container = c
		return container, nil
	}

	for i := range cfg.Mods {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		entry := &cfg.Mods[i]

		outputs, err := runEntry(cfg, entry, outputDir, openArchive, claimOutput, opts)
		if err != nil {
			var ae *apperr.Error
			if asAppErr(err, &ae) {
				err = ae.WithEntry(entry.Name)
			}
			slog.Warn("entry failed", "entry", entry.Name, "error", err)
			result.Failed = append(result.Failed, Failure{Name: entry.Name, Err: err})
			record(opts.Recorder, entry.Name, "failed", "", err.Error())
			continue
		}
		slog.Info("entry applied", "entry", entry.Name, "outputs", len(outputs))
		result.Succeeded = append(result.Succeeded, outputs...)
		for _, out := range outputs {
			record(opts.Recorder, entry.Name, "succeeded", out, "")
		}
	}
	return result, nil
}

func runEntry(cfg *Config, entry *ModEntry, outputDir string, openArchive func() (archive.Container, error), claimOutput func(outPath, entryName string) error, opts Options) ([]string, error) {
	claim := func(outPath string) error {
		return claimOutput(outPath, entry.Name)
	}
	if entry.Archive {
		container, err := openArchive()
		if err != nil {
			return nil, err
		}
		var outputs []string
		for _, inner := range entry.Files {
			doc, err := patchdoc.ParseFile(cfg.resolve(inner.Config))
			if err != nil {
				return nil, err
			}
			data, err := container.Read(inner.Path)
			if err != nil {
				return nil, err
			}
			out, err := runFile(data, doc, outputDir, path.Base(inner.Path), claim, opts)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, out)
		}
		return outputs, nil
	}

	input, ok := opts.Inputs[entry.Name]
	if !ok {
		return nil, apperr.New(apperr.CodeIO, "no input file mapped for entry")
	}
	doc, err := patchdoc.ParseFile(cfg.resolve(entry.Config))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "read input file").WithPath(input)
	}
	out, err := runFile(data, doc, outputDir, filepath.Base(input), claim, opts)
	if err != nil {
		return nil, err
	}
	return []string{out}, nil
}

// runFile drives the per-file pipeline: decode, apply, encode, then write
// through a temp file renamed into place so no partial output is ever
// visible under the final name.
func runFile(data []byte, doc *patchdoc.Doc, outputDir, outputName string, claim func(string) error, opts Options) (string, error) {
	c := opts.codec()

	movie, err := c.Decode(data)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeCodec, err, "decode asset")
	}
	if _, err := engine.Apply(movie, doc, opts.Engine); err != nil {
		return "", err
	}
	encoded, err := c.Encode(movie)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeCodec, err, "encode asset")
	}

	outPath := filepath.Join(outputDir, outputName)
	if err := claim(outPath); err != nil {
		return "", err
	}
	if err := writeAtomic(outPath, encoded); err != nil {
		return "", err
	}
	return outPath, nil
}

// writeAtomic writes data to a uniquely-named temp file in the target
// directory, then renames it into place.
func writeAtomic(finalPath string, data []byte) error {
	dir := filepath.Dir(finalPath)
	tmp := filepath.Join(dir, "."+filepath.Base(finalPath)+".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperr.Wrap(apperr.CodeIO, err, "write output").WithPath(finalPath)
	}
	if err := os.Rename(tmp, finalPath); err != nil {
		_ = os.Remove(tmp)
		return apperr.Wrap(apperr.CodeIO, err, "rename output into place").WithPath(finalPath)
	}
	return nil
}

func record(r Recorder, name, status, output, errMsg string) {
	if r == nil {
		return
	}
	if err := r.RecordEntry(name, status, output, errMsg); err != nil {
		slog.Error("recording entry outcome", "entry", name, "error", err)
	}
}

func asAppErr(err error, target **apperr.Error) bool {
	return errors.As(err, target)
}
