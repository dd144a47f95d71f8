package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/modkit/swfpatch/internal/shape"
)

// geometryFile is the optional YAML tuning file for the shape builder.
type geometryFile struct {
	Tolerance float64 `yaml:"tolerance"`
	Padding   int64   `yaml:"padding"`
}

// loadGeometryOptions reads shape-builder tuning from a YAML file. An empty
// path returns the defaults.
func loadGeometryOptions(path string) (shape.Options, error) {
	opts := shape.Options{Tolerance: shape.DefaultTolerance}
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read options file: %w", err)
	}
	var file geometryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return opts, fmt.Errorf("parse options file: %w", err)
	}
	if file.Tolerance > 0 {
		opts.Tolerance = file.Tolerance
	}
	if file.Padding < 0 {
		return opts, fmt.Errorf("options file: padding must not be negative")
	}
	opts.Padding = file.Padding
	return opts, nil
}
