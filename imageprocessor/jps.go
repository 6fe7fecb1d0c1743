package imageprocessor

import (
	"bytes"
	"image"
	"os"

	"stereo2spatial/logging"
	"stereo2spatial/metadata"
	"stereo2spatial/types"
)

// minSideBySideAspect separates side-by-side frames from ordinary wide photos
const minSideBySideAspect = 1.5

// JPSHandler reads side-by-side stereo JPEGs: left half is the left view
type JPSHandler struct {
	baseHandler
}

// NewJPSHandler creates a handler for .jps files
func NewJPSHandler() *JPSHandler {
	return &JPSHandler{
		baseHandler: baseHandler{name: "jps", extensions: []string{".jps"}},
	}
}

// CanHandle checks the extension and the side-by-side aspect ratio
func (h *JPSHandler) CanHandle(path string) bool {
	if !h.hasExtension(path) {
		return false
	}
	cfg, err := decodeConfigFile(path)
	if err != nil || cfg.Height <= 0 {
		logging.DebugLog("JPS check failed for %s: %v", path, err)
		return false
	}
	return float64(cfg.Width)/float64(cfg.Height) > minSideBySideAspect
}

// ExtractPair splits the image at width/2. Odd widths give the extra column to the right view.
// Any format accepted by CanHandle decodes here too.
func (h *JPSHandler) ExtractPair(path string) (*types.StereoPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newSourceReadError(path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, newSourceReadError(path, err)
	}

	left, right := SplitSideBySide(img)

	b := img.Bounds()
	summary := metadata.SummaryFromBytes(data, b.Dx(), b.Dy())

	pair := &types.StereoPair{
		Left:               left,
		Right:              right,
		SourcePath:         path,
		MetadataSourcePath: path,
	}
	if fov, ok := summary.FOV(); ok {
		pair.FOVHorizontal = ptr(fov)
	}

	logging.DebugLog("JPS %s: %s split into %s + %s", path, describeSize(img), describeSize(left), describeSize(right))
	return pair, nil
}

// SplitSideBySide copies the halves of img into two new images split at floor(width/2)
func SplitSideBySide(img image.Image) (*image.RGBA, *image.RGBA) {
	b := img.Bounds()
	half := b.Dx() / 2
	leftRect := image.Rect(b.Min.X, b.Min.Y, b.Min.X+half, b.Max.Y)
	rightRect := image.Rect(b.Min.X+half, b.Min.Y, b.Max.X, b.Max.Y)
	return cropRGBA(img, leftRect), cropRGBA(img, rightRect)
}
