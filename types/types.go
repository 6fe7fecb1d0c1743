package types

import "image"

// StereoPair holds the left/right views extracted from a stereo source
type StereoPair struct {
	Left  image.Image
	Right image.Image

	// Optional camera parameters; nil when unknown
	FOVHorizontal *float64
	Baseline      *float64

	// SourcePath is the container that produced the pair, empty for separate files
	SourcePath string
	// MetadataSourcePath is the file whose tags are copied into the encoded output
	MetadataSourcePath string

	// Warnings collects non-fatal problems found during extraction
	Warnings []string
}

// FOV returns the horizontal field of view and whether it is known
func (p *StereoPair) FOV() (float64, bool) {
	if p == nil || p.FOVHorizontal == nil {
		return 0, false
	}
	return *p.FOVHorizontal, true
}

// BaselineMM returns the stereo baseline and whether it is known
func (p *StereoPair) BaselineMM() (float64, bool) {
	if p == nil || p.Baseline == nil {
		return 0, false
	}
	return *p.Baseline, true
}

// ConversionRecord holds one row of the conversion history
type ConversionRecord struct {
	ID             int64   `json:"id"`
	SourcePath     string  `json:"source_path"`
	OutputPath     string  `json:"output_path"`
	MetadataSource string  `json:"metadata_source"`
	Format         string  `json:"format"`
	FOVHorizontal  float64 `json:"fov_horizontal"`
	Baseline       float64 `json:"baseline"`
	ModifiedAt     string  `json:"modified_at"`
	ConvertedAt    string  `json:"converted_at"`
}
