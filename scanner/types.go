package scanner

import (
	"context"
	"time"

	"stereo2spatial/types"
)

// ConvertOptions defines the options for a conversion run
type ConvertOptions struct {
	Inputs       []string
	OutputDir    string
	Suffix       string
	MetadataPath string // replaces each pair's metadata source when set
	FOV          *float64
	Baseline     *float64
	ForceRewrite bool
	Verbose      bool
	MaxWorkers   int // 0 picks a value from the CPU count
}

// PairOptions defines a single left/right conversion
type PairOptions struct {
	ConvertOptions
	Left       string
	Right      string
	OutputPath string // overrides OutputDir and Suffix when set
}

// ConvertResult holds the result of converting one input
type ConvertResult struct {
	Path     string
	Output   string
	Format   string
	Success  bool
	Skipped  bool
	Error    error
	Details  []string // verbose metadata lines
	Label    string   // display name, defaults to the input base name
	Duration time.Duration
}

// BatchResult summarizes a conversion run
type BatchResult struct {
	Converted   int
	Skipped     int
	Errors      int
	Interrupted bool
	Elapsed     time.Duration
	Results     []ConvertResult
}

// SpatialEncoder produces a spatial photo from an extracted pair
type SpatialEncoder interface {
	CreateSpatialHEIC(ctx context.Context, pair *types.StereoPair, outputPath string, fov, baseline *float64) error
	ResolveParams(pair *types.StereoPair, fov, baseline *float64) (float64, float64)
}
