// Package codec bounds both ends of the per-file pipeline. The structural
// JSON codec implemented here turns structural documents into tag trees and
// back; the binary codec for the closed source format is an external
// collaborator reached through the Binary interface.
package codec

import (
	"fmt"
	"os"

	"github.com/modkit/swfpatch/internal/tagmodel"
)

// Codec converts between raw bytes and the in-memory tag structure.
type Codec interface {
	// Decode parses bytes into a freshly-owned movie.
	Decode(data []byte) (*tagmodel.Movie, error)
	// Encode serializes a movie back to bytes.
	Encode(m *tagmodel.Movie) ([]byte, error)
}

// Binary is the external binary codec for the closed asset format. It is
// trusted and never reimplemented here; its failures surface unchanged as
// codec errors.
type Binary interface {
	// ToStructural converts binary asset bytes to structural document bytes.
	ToStructural(data []byte) ([]byte, error)
	// FromStructural converts structural document bytes to binary asset bytes.
	FromStructural(data []byte) ([]byte, error)
}

var binary Binary

// RegisterBinary installs the external binary codec. Callers that never
// touch binary assets may leave it unset.
func RegisterBinary(b Binary) {
	binary = b
}

// RegisteredBinary returns the installed binary codec, or an error when none
// is configured.
func RegisteredBinary() (Binary, error) {
	if binary == nil {
		return nil, fmt.Errorf("no binary codec registered")
	}
	return binary, nil
}

// Structural is the JSON structural codec. Encoding is canonical: key order
// and number text are deterministic, so decode -> encode is a fixed point
// after the first pass.
type Structural struct{}

// JSON returns the structural JSON codec.
func JSON() Structural {
	return Structural{}
}

// Decode implements Codec.
func (Structural) Decode(data []byte) (*tagmodel.Movie, error) {
	root, err := tagmodel.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse structural document: %w", err)
	}
	movie, err := tagmodel.MovieFromValue(root)
	if err != nil {
		return nil, fmt.Errorf("parse structural document: %w", err)
	}
	return movie, nil
}

// Encode implements Codec.
func (Structural) Encode(m *tagmodel.Movie) ([]byte, error) {
	data, err := tagmodel.Marshal(m.Value())
	if err != nil {
		return nil, fmt.Errorf("encode structural document: %w", err)
	}
	return data, nil
}

// ConvertToStructural reads a binary asset and writes its structural
// document next to the requested path.
func ConvertToStructural(inputPath, outputPath string) error {
	bin, err := RegisteredBinary()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read asset: %w", err)
	}
	structural, err := bin.ToStructural(data)
	if err != nil {
		return fmt.Errorf("convert to structural: %w", err)
	}
	if err := os.WriteFile(outputPath, structural, 0o644); err != nil {
		return fmt.Errorf("write structural document: %w", err)
	}
	return nil
}

// ConvertFromStructural reads a structural document and writes the binary
// asset.
func ConvertFromStructural(inputPath, outputPath string) error {
	bin, err := RegisteredBinary()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read structural document: %w", err)
	}
	out, err := bin.FromStructural(data)
	if err != nil {
		return fmt.Errorf("convert from structural: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write asset: %w", err)
	}
	return nil
}
