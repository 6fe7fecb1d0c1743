package metadata

import (
	"math"
)

// FullFrameWidthMM is the width of a 35mm film frame
const FullFrameWidthMM = 36.0

// Summary is the camera information derived from a tag set. Zero values mean
// the field could not be determined.
type Summary struct {
	Make            string
	Model           string
	FocalLength     float64 // mm
	FocalLength35mm int     // mm, 35mm-equivalent
	SensorWidth     float64 // mm
	FOVHorizontal   float64 // degrees
	PixelWidth      int
	PixelHeight     int

	// Tags is the flattened tag set the summary was built from
	Tags map[TagID]any
}

// FOV returns the horizontal field of view and whether it is known
func (s Summary) FOV() (float64, bool) {
	return s.FOVHorizontal, s.FOVHorizontal > 0
}

// HasCamera reports whether both make and model were found
func (s Summary) HasCamera() bool {
	return s.Make != "" && s.Model != ""
}

// FOVFrom35mm computes the horizontal field of view in degrees from a
// 35mm-equivalent focal length
func FOVFrom35mm(focal35mm float64) float64 {
	return FOVFromGeometry(FullFrameWidthMM, focal35mm)
}

// FOVFromGeometry computes the horizontal field of view in degrees from a sensor
// width and a real focal length, both in millimeters
func FOVFromGeometry(sensorWidthMM, focalLengthMM float64) float64 {
	return 2 * math.Atan(sensorWidthMM/(2*focalLengthMM)) * 180 / math.Pi
}

// Summarize derives a Summary from a tag set. width and height are the decoded
// image dimensions, used when the tags carry no pixel dimensions. Missing or
// malformed tags leave the corresponding fields unset.
func Summarize(tags Tags, width, height int) Summary {
	flat := tags.Flatten()
	summary := Summary{Tags: flat}

	summary.Make, _ = stringTag(flat, TagMake)
	summary.Model, _ = stringTag(flat, TagModel)
	summary.FocalLength, _ = positiveFloatTag(flat, TagFocalLength)
	if f35, ok := intTag(flat, TagFocalLength35mm); ok && f35 > 0 {
		summary.FocalLength35mm = f35
	}

	if w, ok := intTag(flat, TagPixelXDimension); ok && w > 0 {
		summary.PixelWidth = w
	} else {
		summary.PixelWidth = width
	}
	if h, ok := intTag(flat, TagPixelYDimension); ok && h > 0 {
		summary.PixelHeight = h
	} else {
		summary.PixelHeight = height
	}

	summary.SensorWidth = sensorWidthFromFocalPlane(flat, summary.PixelWidth)
	if summary.SensorWidth == 0 && summary.HasCamera() {
		if w, ok := SensorWidthFor(summary.Make, summary.Model); ok {
			summary.SensorWidth = w
		}
	}

	summary.FOVHorizontal = computeFOV(summary)
	return summary
}

// computeFOV prefers the 35mm-equivalent focal length and falls back to the
// sensor geometry
func computeFOV(s Summary) float64 {
	if s.FocalLength35mm > 0 {
		return FOVFrom35mm(float64(s.FocalLength35mm))
	}
	if s.SensorWidth > 0 && s.FocalLength > 0 {
		return FOVFromGeometry(s.SensorWidth, s.FocalLength)
	}
	return 0
}

// sensorWidthFromFocalPlane derives the sensor width from the focal plane
// resolution: pixels across the sensor divided by pixels per unit
func sensorWidthFromFocalPlane(tags map[TagID]any, pixelWidth int) float64 {
	resX, ok := positiveFloatTag(tags, TagFocalPlaneXResolution)
	if !ok || pixelWidth <= 0 {
		return 0
	}
	unit, ok := intTag(tags, TagFocalPlaneResolutionUnit)
	if !ok {
		return 0
	}

	var mmPerUnit float64
	switch unit {
	case 2: // inch
		mmPerUnit = 25.4
	case 3: // centimeter
		mmPerUnit = 10.0
	default:
		return 0
	}

	width := float64(pixelWidth) / resX * mmPerUnit
	if width <= 0 || math.IsInf(width, 0) || math.IsNaN(width) {
		return 0
	}
	return width
}
