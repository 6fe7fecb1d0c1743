package imageprocessor

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"stereo2spatial/logging"
	"stereo2spatial/metadata"
	"stereo2spatial/types"

	"github.com/oov/psd"
	"golang.org/x/image/draw"
)

// Layer is one top-level layer of a layered document
type Layer struct {
	Name string
	// Bounds is the layer rectangle in canvas coordinates
	Bounds  image.Rectangle
	Picture image.Image
}

// LayerDocument is a decoded layered document
type LayerDocument struct {
	Canvas image.Rectangle
	Layers []Layer
}

// Names returns the layer names in document order
func (d *LayerDocument) Names() []string {
	names := make([]string, len(d.Layers))
	for i, l := range d.Layers {
		names[i] = l.Name
	}
	return names
}

// LayerDecoder reads the top-level layers of a document. When withPixels is
// false only names and bounds are needed.
type LayerDecoder interface {
	DecodeLayers(path string, withPixels bool) (*LayerDocument, error)
}

// PSDLayerDecoder decodes Photoshop documents with github.com/oov/psd
type PSDLayerDecoder struct{}

func (PSDLayerDecoder) DecodeLayers(path string, withPixels bool) (*LayerDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, _, err := psd.Decode(f, &psd.DecodeOptions{
		SkipLayerImage:  !withPixels,
		SkipMergedImage: true,
	})
	if err != nil {
		return nil, err
	}

	out := &LayerDocument{
		Canvas: doc.Config.Rect,
		Layers: make([]Layer, 0, len(doc.Layer)),
	}
	for i := range doc.Layer {
		l := &doc.Layer[i]
		name := l.UnicodeName
		if name == "" {
			name = l.Name
		}
		out.Layers = append(out.Layers, Layer{Name: name, Bounds: l.Rect, Picture: l.Picker})
	}
	return out, nil
}

// leftRightStem matches document stems of the form "LR<rest>"
var leftRightStem = regexp.MustCompile(`^[Ll][Rr](.+)$`)

var siblingExtensions = []string{".jpg", ".jpeg", ".JPG", ".JPEG"}

// PSDHandler reads layered documents holding layers named "L" and "R".
// A nil Decoder disables the handler; a nil Channels skips the zeroed-channel check.
type PSDHandler struct {
	baseHandler
	Decoder  LayerDecoder
	Channels ChannelAnalyzer
	Analyzer *metadata.Analyzer
}

// NewPSDHandler creates a handler for .psd files
func NewPSDHandler() *PSDHandler {
	return &PSDHandler{
		baseHandler: baseHandler{name: "psd", extensions: []string{".psd"}},
		Decoder:     PSDLayerDecoder{},
		Channels:    DefaultChannelAnalyzer(),
	}
}

func (h *PSDHandler) analyzer() *metadata.Analyzer {
	if h.Analyzer != nil {
		return h.Analyzer
	}
	return metadata.DefaultAnalyzer()
}

// CanHandle requires layers named "L" and "R"
func (h *PSDHandler) CanHandle(path string) bool {
	if h.Decoder == nil || !h.hasExtension(path) {
		return false
	}
	doc, err := h.Decoder.DecodeLayers(path, false)
	if err != nil {
		logging.DebugLog("PSD check failed for %s: %v", path, err)
		return false
	}
	left, right := findStereoLayers(doc.Layers)
	return left != nil && right != nil
}

// ExtractPair composites the first "L" and "R" layers onto the canvas
func (h *PSDHandler) ExtractPair(path string) (*types.StereoPair, error) {
	if h.Decoder == nil {
		return nil, &UnsupportedFormatError{Extension: normalizedExt(path), Supported: h.SupportedExtensions()}
	}
	doc, err := h.Decoder.DecodeLayers(path, true)
	if err != nil {
		return nil, newSourceReadError(path, err)
	}

	leftLayer, rightLayer := findStereoLayers(doc.Layers)
	if leftLayer == nil || rightLayer == nil {
		return nil, &MissingLayersError{Path: path, Layers: doc.Names()}
	}

	pair := &types.StereoPair{
		Left:       compositeLayer(doc.Canvas, leftLayer),
		Right:      compositeLayer(doc.Canvas, rightLayer),
		SourcePath: path,
	}

	for _, side := range []struct {
		name string
		img  image.Image
	}{{"L", pair.Left}, {"R", pair.Right}} {
		if warning := h.checkChannels(side.img, side.name, path); warning != "" {
			logging.LogWarning("%s", warning)
			pair.Warnings = append(pair.Warnings, warning)
		}
	}

	if sibling := SiblingMetadataPath(path); sibling != "" {
		pair.MetadataSourcePath = sibling
		summary := h.analyzer().SummaryFromPath(sibling)
		if fov, ok := summary.FOV(); ok {
			pair.FOVHorizontal = ptr(fov)
		}
	}

	logging.DebugLog("PSD %s: canvas %dx%d, %d layers, metadata from %q",
		path, doc.Canvas.Dx(), doc.Canvas.Dy(), len(doc.Layers), pair.MetadataSourcePath)
	return pair, nil
}

// findStereoLayers returns the first layers named "L" and "R" after trimming
// and upper-casing; later duplicates are ignored
func findStereoLayers(layers []Layer) (left, right *Layer) {
	for i := range layers {
		switch strings.ToUpper(strings.TrimSpace(layers[i].Name)) {
		case "L":
			if left == nil {
				left = &layers[i]
			}
		case "R":
			if right == nil {
				right = &layers[i]
			}
		}
	}
	return left, right
}

// compositeLayer places the layer at its offset on a transparent canvas and
// then drops the alpha channel
func compositeLayer(canvas image.Rectangle, layer *Layer) *image.RGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, canvas.Dx(), canvas.Dy()))
	if layer.Picture != nil {
		target := layer.Bounds.Sub(canvas.Min)
		draw.Draw(dst, target, layer.Picture, layer.Picture.Bounds().Min, draw.Over)
	}
	return opaqueRGBA(dst)
}

// checkChannels returns a warning when any color channel looks zeroed out
func (h *PSDHandler) checkChannels(img image.Image, layerName, path string) string {
	if h.Channels == nil {
		return ""
	}
	means, err := h.Channels.ChannelMeans(img)
	if err != nil {
		logging.DebugLog("channel check skipped for layer %s in %s: %v", layerName, path, err)
		return ""
	}
	dead := deadChannels(means)
	if len(dead) == 0 {
		return ""
	}
	return fmt.Sprintf("layer '%s' in %s has near-zero %s channel(s). The anaglyph channel masking "+
		"may have been baked destructively. The extracted image will lack color information in those channels.",
		layerName, filepath.Base(path), strings.Join(dead, ", "))
}

// SiblingMetadataPath finds the original left JPEG for a document named
// "LR<rest>.psd", i.e. "L<rest>.jpg" in the same directory. Empty when absent.
func SiblingMetadataPath(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	match := leftRightStem.FindStringSubmatch(stem)
	if match == nil {
		return ""
	}
	leftStem := "L" + match[1]
	dir := filepath.Dir(path)

	for _, ext := range siblingExtensions {
		candidate := filepath.Join(dir, leftStem+ext)
		if fileExists(candidate) {
			return candidate
		}
	}

	// Mixed-case extensions such as ".Jpg"
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if strings.TrimSuffix(name, ext) != leftStem || entry.IsDir() {
			continue
		}
		if strings.EqualFold(ext, ".jpg") || strings.EqualFold(ext, ".jpeg") {
			return filepath.Join(dir, name)
		}
	}
	return ""
}
