package imageprocessor

import (
	"slices"

	"stereo2spatial/logging"
	"stereo2spatial/metadata"
	"stereo2spatial/types"
)

// PairHandler builds a stereo pair from two independent image files. It is
// never selected by the registry; callers invoke it directly.
type PairHandler struct {
	baseHandler
	Analyzer *metadata.Analyzer
}

// NewPairHandler creates a handler for explicit left/right files
func NewPairHandler() *PairHandler {
	var extensions []string
	for ext := range formatExtensions {
		if IsPairInput(ext) {
			extensions = append(extensions, ext)
		}
	}
	slices.Sort(extensions)
	return &PairHandler{
		baseHandler: baseHandler{name: "pair", extensions: extensions},
	}
}

// CanHandle reports whether path exists and can serve as one view of a pair
func (h *PairHandler) CanHandle(path string) bool {
	return IsPairInput(path) && fileExists(path)
}

func (h *PairHandler) analyzer() *metadata.Analyzer {
	if h.Analyzer != nil {
		return h.Analyzer
	}
	return metadata.DefaultAnalyzer()
}

// Extract decodes both images without cross-checking their sizes. Camera
// parameters come from metadataPath, or from the left image when it is empty.
func (h *PairHandler) Extract(leftPath, rightPath, metadataPath string) (*types.StereoPair, error) {
	for _, p := range []string{leftPath, rightPath} {
		if !IsPairInput(p) {
			return nil, &UnsupportedFormatError{Extension: normalizedExt(p), Supported: h.SupportedExtensions()}
		}
	}

	left, err := decodeFile(leftPath)
	if err != nil {
		return nil, err
	}
	right, err := decodeFile(rightPath)
	if err != nil {
		return nil, err
	}

	source := metadataPath
	if source == "" {
		source = leftPath
	}
	summary := h.analyzer().SummaryFromPath(source)

	pair := &types.StereoPair{
		Left:               toRGBA(left),
		Right:              toRGBA(right),
		MetadataSourcePath: source,
	}
	if fov, ok := summary.FOV(); ok {
		pair.FOVHorizontal = ptr(fov)
	}

	logging.DebugLog("pair %s + %s: left %s, right %s, metadata from %s",
		leftPath, rightPath, describeSize(pair.Left), describeSize(pair.Right), source)
	return pair, nil
}

