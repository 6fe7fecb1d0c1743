// Package imageprocessor extracts left/right stereo pairs from multi-picture
// JPEGs, side-by-side JPS files, layered PSD documents and separate image files.
package imageprocessor

import "stereo2spatial/types"

// Handler is the interface that every stereo container handler implements
type Handler interface {
	// Name identifies the handler in logs and diagnostics
	Name() string

	// SupportedExtensions lists the lowercased extensions this handler accepts
	SupportedExtensions() []string

	// CanHandle checks the extension and then the file structure. It never
	// fails; any decode problem means false.
	CanHandle(path string) bool

	// ExtractPair decodes the container into a stereo pair
	ExtractPair(path string) (*types.StereoPair, error)
}
