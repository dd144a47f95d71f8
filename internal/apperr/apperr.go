// Package apperr defines the error taxonomy shared by the patch pipeline.
// Every failure carries a category code plus enough structured context
// (entry name, offending id or path) for a caller to render an actionable
// message.
package apperr

import (
	"errors"
	"fmt"
)

// Code categorizes pipeline errors.
type Code string

const (
	// CodeSchema marks a malformed or unknown-key patch or batch document.
	CodeSchema Code = "SCHEMA_ERROR"
	// CodeReference marks an id or tag that does not exist in the structure.
	CodeReference Code = "REFERENCE_ERROR"
	// CodeTypeMismatch marks a tag whose discovered type disagrees with the
	// document.
	CodeTypeMismatch Code = "TYPE_MISMATCH"
	// CodeAsset marks a missing or unreadable vector asset.
	CodeAsset Code = "ASSET_ERROR"
	// CodeGeometry marks an unsupported path or paint construct.
	CodeGeometry Code = "GEOMETRY_ERROR"
	// CodeCodec marks an opaque failure surfaced unchanged from the codec.
	CodeCodec Code = "CODEC_ERROR"
	// CodeIO marks a filesystem or archive access failure.
	CodeIO Code = "IO_ERROR"
)

// Error is a categorized pipeline error.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Entry names the batch entry being processed, when known.
	Entry string

	// Path is the offending file or archive path, when known.
	Path string

	// ID is the offending tag id; negative when not applicable.
	ID int64

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ID >= 0 {
		msg += fmt.Sprintf(" (id=%d)", e.ID)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Entry != "" {
		msg += fmt.Sprintf(" (entry=%s)", e.Entry)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), ID: -1}
}

// Wrap creates an Error wrapping an underlying cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), ID: -1, Err: err}
}

// WithID returns the error annotated with the offending tag id.
func (e *Error) WithID(id int64) *Error {
	e.ID = id
	return e
}

// WithPath returns the error annotated with the offending path.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithEntry returns the error annotated with the batch entry name.
func (e *Error) WithEntry(name string) *Error {
	e.Entry = name
	return e
}

// CodeOf extracts the category of err, or "" when err is not a pipeline
// error. Uses errors.As to handle wrapping.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Is reports whether err belongs to the given category.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
