package metadata

import (
	"math"
	"strconv"
	"strings"
)

// TagID is a numeric EXIF/TIFF tag identifier
type TagID uint16

// Tags consumed by the analyzer
const (
	TagMake                     TagID = 0x010F
	TagModel                    TagID = 0x0110
	TagFocalLength              TagID = 0x920A
	TagFocalLength35mm          TagID = 0xA405
	TagFocalPlaneXResolution    TagID = 0xA20E
	TagFocalPlaneYResolution    TagID = 0xA20F
	TagFocalPlaneResolutionUnit TagID = 0xA210
	TagPixelXDimension          TagID = 0xA002
	TagPixelYDimension          TagID = 0xA003
)

// Rational is an EXIF rational value kept as numerator and denominator
type Rational struct {
	Num int64
	Den int64
}

// Float returns the rational as a float; NaN when the denominator is zero
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return math.NaN()
	}
	return float64(r.Num) / float64(r.Den)
}

// Tags holds a decoded tag set split the way the file stores it: the top-level
// directory and the nested capture-parameters directory. Values are one of
// string, int64, float64, Rational or []byte.
type Tags struct {
	Primary map[TagID]any
	Capture map[TagID]any
}

// NewTags returns an empty tag set
func NewTags() Tags {
	return Tags{
		Primary: make(map[TagID]any),
		Capture: make(map[TagID]any),
	}
}

// Len returns the number of tags across both directories
func (t Tags) Len() int {
	return len(t.Primary) + len(t.Capture)
}

// Flatten merges both directories into one map. Capture values win on collision.
func (t Tags) Flatten() map[TagID]any {
	flat := make(map[TagID]any, t.Len())
	for id, v := range t.Primary {
		flat[id] = v
	}
	for id, v := range t.Capture {
		flat[id] = v
	}
	return flat
}

// stringTag reads a tag as a trimmed string
func stringTag(tags map[TagID]any, id TagID) (string, bool) {
	v, ok := tags[id]
	if !ok || v == nil {
		return "", false
	}
	var s string
	switch val := v.(type) {
	case string:
		s = strings.TrimSpace(val)
	case []byte:
		s = strings.Trim(strings.ToValidUTF8(string(val), "�"), "\x00 ")
	case int64:
		s = strconv.FormatInt(val, 10)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case Rational:
		s = strconv.FormatFloat(val.Float(), 'f', -1, 64)
	default:
		return "", false
	}
	return s, s != ""
}

// intTag reads a tag as an integer, truncating fractional values
func intTag(tags map[TagID]any, id TagID) (int, bool) {
	v, ok := tags[id]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return int(val), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return int(val), true
	case Rational:
		if val.Den == 0 {
			return 0, false
		}
		return int(val.Num / val.Den), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		return n, err == nil
	case []byte:
		n, err := strconv.Atoi(strings.Trim(string(val), "\x00 "))
		return n, err == nil
	}
	return 0, false
}

// positiveFloatTag reads a rational or numeric tag; non-positive values are unset
func positiveFloatTag(tags map[TagID]any, id TagID) (float64, bool) {
	v, ok := tags[id]
	if !ok || v == nil {
		return 0, false
	}
	var f float64
	switch val := v.(type) {
	case Rational:
		f = val.Float()
	case float64:
		f = val
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}
