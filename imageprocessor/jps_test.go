package imageprocessor

import (
	"image"
	"image/color"
	"testing"

	"stereo2spatial/metadata/metadatatest"
)

func TestSplitSideBySideEvenWidth(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{G: 255, A: 255})
			}
		}
	}

	left, right := SplitSideBySide(img)
	if left.Bounds().Dx() != 10 || right.Bounds().Dx() != 10 {
		t.Fatalf("widths: got %d+%d want 10+10", left.Bounds().Dx(), right.Bounds().Dx())
	}
	if left.Bounds().Dx()+right.Bounds().Dx() != 20 {
		t.Fatal("halves do not add up to the source width")
	}
	if got := left.RGBAAt(9, 2); got.R != 255 || got.G != 0 {
		t.Fatalf("left edge pixel: got %+v", got)
	}
	if got := right.RGBAAt(0, 2); got.G != 255 || got.R != 0 {
		t.Fatalf("right edge pixel: got %+v", got)
	}
}

func TestSplitSideBySideOddWidth(t *testing.T) {
	img := solidRGBA(21, 5, color.Gray{Y: 50})
	left, right := SplitSideBySide(img)
	if left.Bounds().Dx() != 10 {
		t.Fatalf("left width: got %d want 10", left.Bounds().Dx())
	}
	if right.Bounds().Dx() != left.Bounds().Dx()+1 {
		t.Fatalf("right width: got %d want %d", right.Bounds().Dx(), left.Bounds().Dx()+1)
	}
	if left.Bounds().Dy() != 5 || right.Bounds().Dy() != 5 {
		t.Fatal("heights must match the source")
	}
}

func TestSplitSideBySideDoesNotAlias(t *testing.T) {
	img := solidRGBA(4, 2, color.White)
	left, _ := SplitSideBySide(img)
	left.Set(0, 0, color.Black)
	if got := img.RGBAAt(0, 0); got.R != 255 {
		t.Fatal("split halves must not share the source buffer")
	}
}

func TestJPSCanHandleAspectRatio(t *testing.T) {
	dir := t.TempDir()
	wide := writeFile(t, dir, "wide.jps", metadatatest.SolidJPEG(32, 12, color.White))
	square := writeFile(t, dir, "square.jps", metadatatest.SolidJPEG(18, 12, color.White))
	exact := writeFile(t, dir, "exact.jps", metadatatest.SolidJPEG(30, 20, color.White))
	wrongExt := writeFile(t, dir, "wide.jpg", metadatatest.SolidJPEG(32, 12, color.White))
	garbage := writeFile(t, dir, "garbage.jps", []byte("not an image"))

	h := NewJPSHandler()
	if !h.CanHandle(wide) {
		t.Fatal("expected 32x12 to be accepted")
	}
	if h.CanHandle(square) {
		t.Fatal("expected 18x12 to be rejected")
	}
	if h.CanHandle(exact) {
		t.Fatal("aspect ratio of exactly 1.5 must be rejected")
	}
	if h.CanHandle(wrongExt) {
		t.Fatal("expected .jpg to be rejected")
	}
	if h.CanHandle(garbage) {
		t.Fatal("expected undecodable file to be rejected")
	}
}

func TestJPSExtractPair(t *testing.T) {
	jpg := metadatatest.CameraJPEG(33, 10, color.Gray{Y: 90}, metadatatest.Camera{
		Make:            "Canon",
		Model:           "Canon EOS 6D",
		FocalLength:     50,
		FocalLength35mm: 0,
	})
	path := writeFile(t, t.TempDir(), "scene.JPS", jpg)

	pair, err := NewJPSHandler().ExtractPair(path)
	if err != nil {
		t.Fatalf("ExtractPair returned error: %v", err)
	}
	if pair.Left.Bounds().Dx() != 16 || pair.Right.Bounds().Dx() != 17 {
		t.Fatalf("widths: got %d+%d want 16+17", pair.Left.Bounds().Dx(), pair.Right.Bounds().Dx())
	}
	if pair.MetadataSourcePath != path || pair.SourcePath != path {
		t.Fatalf("unexpected paths: %q %q", pair.SourcePath, pair.MetadataSourcePath)
	}
	fov, ok := pair.FOV()
	if !ok {
		t.Fatal("expected FOV from the undivided image's tags")
	}
	// 35.8mm sensor at 50mm
	if fov < 39 || fov > 40 {
		t.Fatalf("FOV: got %v want ~39.4", fov)
	}
}

func TestJPSExtractPairNonJPEGPayload(t *testing.T) {
	img := solidRGBA(30, 10, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	path := writeFile(t, t.TempDir(), "converted.jps", encodePNG(t, img))

	h := NewJPSHandler()
	if !h.CanHandle(path) {
		t.Fatal("expected a wide PNG payload to be accepted")
	}
	pair, err := h.ExtractPair(path)
	if err != nil {
		t.Fatalf("ExtractPair returned error: %v", err)
	}
	if pair.Left.Bounds().Dx() != 15 || pair.Right.Bounds().Dx() != 15 {
		t.Fatalf("widths: got %d+%d want 15+15", pair.Left.Bounds().Dx(), pair.Right.Bounds().Dx())
	}
	if _, ok := pair.FOV(); ok {
		t.Fatal("expected unset FOV without tags")
	}
}
