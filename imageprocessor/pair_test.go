package imageprocessor

import (
	"errors"
	"image/color"
	"path/filepath"
	"reflect"
	"testing"

	"stereo2spatial/metadata"
	"stereo2spatial/metadata/metadatatest"
)

func newTestPairHandler() *PairHandler {
	h := NewPairHandler()
	h.Analyzer = &metadata.Analyzer{Readers: []metadata.Reader{metadata.GoexifReader{}}}
	return h
}

func TestPairExtractDefaultsMetadataToLeft(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.jpg", metadatatest.CameraJPEG(12, 8, color.White, metadatatest.Camera{
		Make:            "SONY",
		Model:           "ILCE-7M4",
		FocalLength35mm: 50,
	}))
	right := writeFile(t, dir, "right.png", encodePNG(t, solidRGBA(10, 6, color.Black)))

	pair, err := newTestPairHandler().Extract(left, right, "")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if pair.MetadataSourcePath != left {
		t.Fatalf("metadata source: got %q want %q", pair.MetadataSourcePath, left)
	}
	if pair.SourcePath != "" {
		t.Fatalf("expected empty source path, got %q", pair.SourcePath)
	}
	if pair.Left.Bounds().Dx() != 12 || pair.Right.Bounds().Dx() != 10 {
		t.Fatalf("sizes must be kept as decoded: %v %v", pair.Left.Bounds(), pair.Right.Bounds())
	}
	fov, ok := pair.FOV()
	if !ok || fov != metadata.FOVFrom35mm(50) {
		t.Fatalf("FOV: got %v,%v", fov, ok)
	}
}

func TestPairExtractUsesDonor(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.png", encodePNG(t, solidRGBA(8, 8, color.White)))
	right := writeFile(t, dir, "right.png", encodePNG(t, solidRGBA(8, 8, color.White)))
	donor := writeFile(t, dir, "donor.jpg", metadatatest.CameraJPEG(8, 8, color.White, metadatatest.Camera{
		Make:            "NIKON CORPORATION",
		Model:           "NIKON Z 7",
		FocalLength35mm: 24,
	}))

	pair, err := newTestPairHandler().Extract(left, right, donor)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if pair.MetadataSourcePath != donor {
		t.Fatalf("metadata source: got %q want %q", pair.MetadataSourcePath, donor)
	}
	if fov, ok := pair.FOV(); !ok || fov != metadata.FOVFrom35mm(24) {
		t.Fatalf("FOV: got %v,%v", fov, ok)
	}
}

func TestPairExtractWithoutMetadata(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.png", encodePNG(t, solidRGBA(8, 8, color.White)))
	right := writeFile(t, dir, "right.png", encodePNG(t, solidRGBA(8, 8, color.White)))

	pair, err := newTestPairHandler().Extract(left, right, "")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if _, ok := pair.FOV(); ok {
		t.Fatal("expected unset FOV for PNG without tags")
	}
}

func TestPairExtractUnreadable(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.png", encodePNG(t, solidRGBA(8, 8, color.White)))
	broken := writeFile(t, dir, "right.jpg", []byte("garbage"))

	_, err := newTestPairHandler().Extract(left, broken, "")
	if !errors.Is(err, ErrSourceRead) {
		t.Fatalf("expected source read error, got %v", err)
	}
	var readErr *SourceReadError
	if !errors.As(err, &readErr) || readErr.Path != broken {
		t.Fatalf("expected error for %s, got %v", broken, err)
	}

	_, err = newTestPairHandler().Extract(filepath.Join(dir, "missing.png"), left, "")
	if !errors.Is(err, ErrSourceRead) {
		t.Fatalf("expected source read error for missing file, got %v", err)
	}
}

func TestPairHandlerExtensions(t *testing.T) {
	h := NewPairHandler()
	want := []string{".bmp", ".jpeg", ".jpg", ".jps", ".mpo", ".png", ".tif", ".tiff", ".webp"}
	if got := h.SupportedExtensions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("extensions: got %v want %v", got, want)
	}

	dir := t.TempDir()
	png := writeFile(t, dir, "left.PNG", encodePNG(t, solidRGBA(4, 4, color.White)))
	doc := writeFile(t, dir, "notes.txt", []byte("x"))
	layered := writeFile(t, dir, "LR 001.psd", []byte("x"))
	tests := []struct {
		path string
		want bool
	}{
		{png, true},
		{doc, false},
		{layered, false},
		{filepath.Join(dir, "missing.jpg"), false},
	}
	for _, tc := range tests {
		if got := h.CanHandle(tc.path); got != tc.want {
			t.Fatalf("CanHandle(%q): got %v want %v", filepath.Base(tc.path), got, tc.want)
		}
	}
}

func TestPairExtractRejectsNonImageInput(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.png", encodePNG(t, solidRGBA(8, 8, color.White)))
	layered := writeFile(t, dir, "right.psd", []byte("8BPS"))

	_, err := newTestPairHandler().Extract(left, layered, "")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) || unsupported.Extension != ".psd" || len(unsupported.Supported) == 0 {
		t.Fatalf("unexpected diagnostic: %v", err)
	}
}
