package imageprocessor

import (
	"errors"
	"image/color"
	"slices"
	"testing"

	"stereo2spatial/metadata/metadatatest"
	"stereo2spatial/types"
)

func TestRegistryRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "photo.bmp", []byte("BM"))

	r := NewRegistry()
	if h := r.HandlerFor(path); h != nil {
		t.Fatalf("expected no handler for .bmp, got %s", h.Name())
	}

	_, err := r.Extract(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedFormatError, got %T", err)
	}
	if unsupported.Extension != ".bmp" {
		t.Fatalf("extension: got %q want %q", unsupported.Extension, ".bmp")
	}
	if !slices.Equal(unsupported.Supported, r.SupportedExtensions()) {
		t.Fatalf("supported: got %v want %v", unsupported.Supported, r.SupportedExtensions())
	}
}

func TestRegistrySupportedExtensionsSuperset(t *testing.T) {
	r := NewRegistry()
	all := r.SupportedExtensions()
	for _, h := range r.Handlers() {
		for _, ext := range h.SupportedExtensions() {
			if !slices.Contains(all, ext) {
				t.Fatalf("%s extension %s missing from registry list %v", h.Name(), ext, all)
			}
		}
	}
	for _, ext := range []string{".mpo", ".jps", ".psd"} {
		if !slices.Contains(all, ext) {
			t.Fatalf("expected %s in %v", ext, all)
		}
	}
}

func TestRegistryDispatch(t *testing.T) {
	dir := t.TempDir()
	mpo := writeFile(t, dir, "a.mpo", buildMPO(
		metadatatest.SolidJPEG(8, 8, color.White),
		metadatatest.SolidJPEG(8, 8, color.Black),
	))
	jps := writeFile(t, dir, "b.jps", metadatatest.SolidJPEG(40, 10, color.White))

	r := NewRegistry()
	if h := r.HandlerFor(mpo); h == nil || h.Name() != "mpo" {
		t.Fatalf("expected mpo handler, got %v", h)
	}
	if h := r.HandlerFor(jps); h == nil || h.Name() != "jps" {
		t.Fatalf("expected jps handler, got %v", h)
	}
	pair, err := r.Extract(jps)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if pair.Left.Bounds().Dx() != 20 {
		t.Fatalf("left width: got %d want 20", pair.Left.Bounds().Dx())
	}
}

type stubHandler struct {
	baseHandler
	accept bool
	calls  *int
}

func (s *stubHandler) CanHandle(path string) bool {
	*s.calls++
	return s.accept && s.hasExtension(path)
}

func (s *stubHandler) ExtractPair(path string) (*types.StereoPair, error) {
	return &types.StereoPair{SourcePath: s.name}, nil
}

func TestRegistryOrderBreaksTies(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.sbs", []byte("x"))
	var firstCalls, secondCalls, thirdCalls int
	first := &stubHandler{baseHandler: baseHandler{name: "first", extensions: []string{".sbs"}}, accept: false, calls: &firstCalls}
	second := &stubHandler{baseHandler: baseHandler{name: "second", extensions: []string{".sbs"}}, accept: true, calls: &secondCalls}
	third := &stubHandler{baseHandler: baseHandler{name: "third", extensions: []string{".sbs"}}, accept: true, calls: &thirdCalls}

	r := NewRegistryWith(first, second, third)
	pair, err := r.Extract(path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if pair.SourcePath != "second" {
		t.Fatalf("expected second handler, got %q", pair.SourcePath)
	}
	if thirdCalls != 0 {
		t.Fatal("handlers after the first match must not be consulted")
	}
}
