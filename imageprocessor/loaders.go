package imageprocessor

import (
	"os"
	"slices"
)

// baseHandler provides the extension bookkeeping shared by all handlers
type baseHandler struct {
	name       string
	extensions []string
}

func (h *baseHandler) Name() string {
	return h.name
}

// SupportedExtensions returns a copy of the handler's extension list
func (h *baseHandler) SupportedExtensions() []string {
	return slices.Clone(h.extensions)
}

// hasExtension checks the extension and that the file exists
func (h *baseHandler) hasExtension(path string) bool {
	if !slices.Contains(h.extensions, normalizedExt(path)) {
		return false
	}
	return fileExists(path)
}

// Utility functions for handlers

// fileExists checks if a regular file exists and is accessible
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ptr returns a pointer to a copy of v
func ptr[T any](v T) *T {
	return &v
}
