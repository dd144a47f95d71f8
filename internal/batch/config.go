// Package batch resolves a catalog of named mods and drives the per-file
// pipeline for each: decode, apply, encode, atomic write. Entries are
// processed independently; one entry's failure never aborts the batch.
package batch

import (
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	json "github.com/goccy/go-json"

	"github.com/modkit/swfpatch/internal/apperr"
)

// schema is the closed batch-configuration schema.
const schema = `
#Config: {
	mods: [...#Mod]
}

#Mod: {
	name: string & !=""
	ba2?: bool
	config?: string & !=""
	files?: [...#File]
}

#File: {
	path:   string & !=""
	config: string & !=""
}
`

// Config is one parsed batch catalog. Immutable after parse.
type Config struct {
	// Dir is the directory containing the configuration file; entry config
	// paths resolve against it.
	Dir string

	// Mods lists the catalog entries in order.
	Mods []ModEntry
}

// ModEntry is one named patch job: either a single loose-file config or a
// list of archive inner files with per-file configs.
type ModEntry struct {
	Name    string
	Archive bool
	Config  string
	Files   []InnerFile
}

// InnerFile pairs an archive inner path with its patch document.
type InnerFile struct {
	Path   string
	Config string
}

type rawConfig struct {
	Mods []rawMod `json:"mods"`
}

type rawMod struct {
	Name   string    `json:"name"`
	Ba2    bool      `json:"ba2"`
	Config string    `json:"config"`
	Files  []rawFile `json:"files"`
}

type rawFile struct {
	Path   string `json:"path"`
	Config string `json:"config"`
}

// ParseConfig validates and decodes a batch configuration. dir is the
// directory containing the configuration file.
func ParseConfig(data []byte, dir string) (*Config, error) {
	if err := validateConfig(data); err != nil {
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperr.Wrap(apperr.CodeSchema, err, "decode batch configuration")
	}

	cfg := &Config{Dir: dir, Mods: make([]ModEntry, 0, len(raw.Mods))}
	for _, m := range raw.Mods {
		entry := ModEntry{Name: m.Name, Archive: m.Ba2, Config: m.Config}
		for _, f := range m.Files {
			entry.Files = append(entry.Files, InnerFile{Path: f.Path, Config: f.Config})
		}
		if entry.Archive {
			if len(entry.Files) == 0 {
				return nil, apperr.New(apperr.CodeSchema,
					"mod %q: archive mode requires a files list", entry.Name)
			}
			if entry.Config != "" {
				return nil, apperr.New(apperr.CodeSchema,
					"mod %q: archive mode uses per-file configs, not a top-level config", entry.Name)
			}
		} else {
			if entry.Config == "" {
				return nil, apperr.New(apperr.CodeSchema,
					"mod %q: missing config path", entry.Name)
			}
			if len(entry.Files) != 0 {
				return nil, apperr.New(apperr.CodeSchema,
					"mod %q: files list requires ba2 mode", entry.Name)
			}
		}
		cfg.Mods = append(cfg.Mods, entry)
	}
	return cfg, nil
}

// ParseConfigFile reads and parses a batch configuration from disk.
func ParseConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "read batch configuration").WithPath(path)
	}
	return ParseConfig(data, filepath.Dir(path))
}

// resolve joins a config-relative path against the configuration directory.
func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

func validateConfig(data []byte) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schema)
	if err := schemaVal.Err(); err != nil {
		return apperr.Wrap(apperr.CodeSchema, err, "compile configuration schema")
	}
	cfgSchema := schemaVal.LookupPath(cue.ParsePath("#Config"))
	if err := cfgSchema.Err(); err != nil {
		return apperr.Wrap(apperr.CodeSchema, err, "compile configuration schema")
	}

	expr, err := cuejson.Extract("batch.json", data)
	if err != nil {
		return apperr.Wrap(apperr.CodeSchema, err, "parse batch configuration")
	}
	cfgVal := ctx.BuildExpr(expr)
	if err := cfgVal.Err(); err != nil {
		return apperr.Wrap(apperr.CodeSchema, err, "parse batch configuration")
	}

	unified := cfgSchema.Unify(cfgVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return apperr.New(apperr.CodeSchema, "invalid batch configuration: %s",
			cueerrors.Details(err, nil))
	}
	return nil
}
