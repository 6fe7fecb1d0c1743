package metadata

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"sync"

	// Decoders for image.DecodeConfig
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"stereo2spatial/logging"

	"github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Reader extracts a tag set from a file on disk
type Reader interface {
	Name() string
	ReadTags(path string) (Tags, error)
}

// GoexifReader decodes embedded EXIF with the pure-Go goexif parser
type GoexifReader struct{}

func (GoexifReader) Name() string { return "goexif" }

func (GoexifReader) ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()
	return DecodeTags(f)
}

// DecodeTags parses EXIF from a JPEG or TIFF stream. Tags that live in the
// top-level directory land in Primary, everything else in Capture.
func DecodeTags(r io.Reader) (Tags, error) {
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return Tags{}, err
	}

	tags := NewTags()
	primary := make(map[*tiff.Tag]bool)
	if x.Tiff != nil && len(x.Tiff.Dirs) > 0 {
		for _, tag := range x.Tiff.Dirs[0].Tags {
			primary[tag] = true
			if v, ok := tagValue(tag); ok {
				tags.Primary[TagID(tag.Id)] = v
			}
		}
	}

	x.Walk(captureWalker{tags: tags, skip: primary})
	return tags, nil
}

// DecodeTagsBytes is DecodeTags over an in-memory buffer
func DecodeTagsBytes(data []byte) (Tags, error) {
	return DecodeTags(bytes.NewReader(data))
}

type captureWalker struct {
	tags Tags
	skip map[*tiff.Tag]bool
}

func (w captureWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if w.skip[tag] {
		return nil
	}
	if v, ok := tagValue(tag); ok {
		w.tags.Capture[TagID(tag.Id)] = v
	}
	return nil
}

// tagValue converts a raw tiff tag to one of the value kinds Tags carries
func tagValue(tag *tiff.Tag) (any, bool) {
	if tag == nil || tag.Count == 0 {
		return nil, false
	}
	switch tag.Format() {
	case tiff.IntVal:
		v, err := tag.Int64(0)
		if err != nil {
			return nil, false
		}
		return v, true
	case tiff.RatVal:
		num, den, err := tag.Rat2(0)
		if err != nil {
			return nil, false
		}
		return Rational{Num: num, Den: den}, true
	case tiff.FloatVal:
		v, err := tag.Float(0)
		if err != nil {
			return nil, false
		}
		return v, true
	case tiff.StringVal:
		v, err := tag.StringVal()
		if err != nil {
			return nil, false
		}
		return v, true
	}
	return append([]byte(nil), tag.Val...), true
}

// ExiftoolReader shells out to exiftool; used for containers goexif cannot
// parse (PSD, HEIC, most RAW)
type ExiftoolReader struct{}

// exiftoolFields maps exiftool field names to tag IDs
var exiftoolFields = map[string]TagID{
	"Make":                     TagMake,
	"Model":                    TagModel,
	"FocalLength":              TagFocalLength,
	"FocalLengthIn35mmFormat":  TagFocalLength35mm,
	"FocalPlaneXResolution":    TagFocalPlaneXResolution,
	"FocalPlaneYResolution":    TagFocalPlaneYResolution,
	"FocalPlaneResolutionUnit": TagFocalPlaneResolutionUnit,
	"ExifImageWidth":           TagPixelXDimension,
	"ExifImageHeight":          TagPixelYDimension,
}

func (ExiftoolReader) Name() string { return "exiftool" }

func (ExiftoolReader) ReadTags(path string) (Tags, error) {
	et, err := exiftool.NewExiftool(exiftool.NoPrintConversion())
	if err != nil {
		return Tags{}, fmt.Errorf("failed to initialize exiftool: %w", err)
	}
	defer et.Close()

	fileInfos := et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return Tags{}, fmt.Errorf("no metadata extracted from %s", path)
	}
	fileInfo := fileInfos[0]
	if fileInfo.Err != nil {
		return Tags{}, fileInfo.Err
	}

	return tagsFromFields(fileInfo.Fields), nil
}

// tagsFromFields keeps the analyzer's fields out of an exiftool result.
// Exiftool flattens every directory, so all values go to Capture.
func tagsFromFields(fields map[string]interface{}) Tags {
	tags := NewTags()
	for name, id := range exiftoolFields {
		raw, ok := fields[name]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			tags.Capture[id] = v
		case string:
			tags.Capture[id] = v
		case int:
			tags.Capture[id] = int64(v)
		case int64:
			tags.Capture[id] = v
		default:
			tags.Capture[id] = fmt.Sprint(v)
		}
	}
	return tags
}

var (
	exiftoolOnce      sync.Once
	exiftoolInstalled bool
)

// ExiftoolAvailable reports whether an exiftool binary is on PATH
func ExiftoolAvailable() bool {
	exiftoolOnce.Do(func() {
		_, err := exec.LookPath("exiftool")
		exiftoolInstalled = err == nil
	})
	return exiftoolInstalled
}

// Analyzer reads tags with an ordered list of readers and summarizes the
// first non-empty result
type Analyzer struct {
	Readers []Reader
}

// NewAnalyzer returns an analyzer using goexif, then exiftool when installed
func NewAnalyzer() *Analyzer {
	readers := []Reader{GoexifReader{}}
	if ExiftoolAvailable() {
		readers = append(readers, ExiftoolReader{})
	}
	return &Analyzer{Readers: readers}
}

var (
	defaultAnalyzer     *Analyzer
	defaultAnalyzerOnce sync.Once
)

// DefaultAnalyzer returns the shared analyzer
func DefaultAnalyzer() *Analyzer {
	defaultAnalyzerOnce.Do(func() {
		defaultAnalyzer = NewAnalyzer()
	})
	return defaultAnalyzer
}

// ReadTags tries each reader in order. A file with no readable tags yields an
// empty set, never an error.
func (a *Analyzer) ReadTags(path string) Tags {
	for _, reader := range a.Readers {
		tags, err := reader.ReadTags(path)
		if err != nil {
			logging.DebugLog("%s: no tags from %s: %v", reader.Name(), path, err)
			continue
		}
		if tags.Len() > 0 {
			return tags
		}
	}
	return NewTags()
}

// SummaryFromPath summarizes the file at path. Unreadable files produce an
// empty summary.
func (a *Analyzer) SummaryFromPath(path string) Summary {
	width, height := imageDimensions(path)
	return Summarize(a.ReadTags(path), width, height)
}

// SummaryFromPath summarizes a file with the default analyzer
func SummaryFromPath(path string) Summary {
	return DefaultAnalyzer().SummaryFromPath(path)
}

// SummaryFromBytes summarizes an in-memory JPEG whose dimensions are already known
func SummaryFromBytes(data []byte, width, height int) Summary {
	tags, err := DecodeTagsBytes(data)
	if err != nil {
		logging.DebugLog("no embedded tags: %v", err)
		tags = NewTags()
	}
	return Summarize(tags, width, height)
}

// imageDimensions decodes only the image header; zero when unknown
func imageDimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
