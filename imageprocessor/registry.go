package imageprocessor

import (
	"slices"
	"sync"

	"stereo2spatial/logging"
	"stereo2spatial/types"
)

// Registry selects a stereo handler for a file. Handlers are tried in
// registration order and the first one whose CanHandle succeeds wins.
type Registry struct {
	handlers []Handler
	mutex    sync.RWMutex
}

// NewRegistry creates a registry with the MPO, JPS and PSD handlers
func NewRegistry() *Registry {
	registry := &Registry{}
	registry.RegisterHandler(NewMPOHandler())
	registry.RegisterHandler(NewJPSHandler())
	registry.RegisterHandler(NewPSDHandler())
	return registry
}

// NewRegistryWith creates a registry with the given handlers in priority order
func NewRegistryWith(handlers ...Handler) *Registry {
	registry := &Registry{}
	for _, h := range handlers {
		registry.RegisterHandler(h)
	}
	return registry
}

// RegisterHandler appends a handler at the lowest priority
func (r *Registry) RegisterHandler(h Handler) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.handlers = append(r.handlers, h)
}

// Handlers returns the registered handlers in priority order
func (r *Registry) Handlers() []Handler {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return slices.Clone(r.handlers)
}

// HandlerFor returns the first handler able to read path, or nil
func (r *Registry) HandlerFor(path string) Handler {
	for _, h := range r.Handlers() {
		if h.CanHandle(path) {
			return h
		}
	}
	return nil
}

// SupportedExtensions returns every handler's extensions in handler order
func (r *Registry) SupportedExtensions() []string {
	var extensions []string
	for _, h := range r.Handlers() {
		extensions = append(extensions, h.SupportedExtensions()...)
	}
	return extensions
}

// CanLoadFile checks if any handler claims the file's extension
func (r *Registry) CanLoadFile(path string) bool {
	return slices.Contains(r.SupportedExtensions(), normalizedExt(path))
}

// Extract dispatches to the selected handler
func (r *Registry) Extract(path string) (*types.StereoPair, error) {
	h := r.HandlerFor(path)
	if h == nil {
		return nil, &UnsupportedFormatError{
			Extension: normalizedExt(path),
			Supported: r.SupportedExtensions(),
		}
	}

	logging.LogInfo("Extracting %s with %s handler", path, h.Name())
	return h.ExtractPair(path)
}
