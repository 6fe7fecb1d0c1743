package imageprocessor

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds for errors.Is checks
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingLayers     = errors.New("missing stereo layers")
	ErrSourceRead        = errors.New("cannot read source")
)

// UnsupportedFormatError is returned when no handler accepts a file
type UnsupportedFormatError struct {
	Extension string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported format %s (supported: %s)", ext, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// MissingLayersError is returned when a layered document lacks an "L" or "R" layer
type MissingLayersError struct {
	Path   string
	Layers []string
}

func (e *MissingLayersError) Error() string {
	quoted := make([]string, len(e.Layers))
	for i, name := range e.Layers {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%s must contain layers named \"L\" and \"R\"; found [%s]", e.Path, strings.Join(quoted, ", "))
}

func (e *MissingLayersError) Is(target error) bool {
	return target == ErrMissingLayers
}

// SourceReadError wraps a failure to open or decode a source file
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

func (e *SourceReadError) Is(target error) bool {
	return target == ErrSourceRead
}

// newSourceReadError creates a standardized error for decode failures
func newSourceReadError(path string, err error) error {
	return &SourceReadError{Path: path, Err: err}
}
