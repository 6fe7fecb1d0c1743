package scanner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stereo2spatial/imageprocessor"
	"stereo2spatial/logging"
	"stereo2spatial/metadata"
	"stereo2spatial/signalhandler"
	"stereo2spatial/types"
	"stereo2spatial/utils"
)

// Converter runs extraction and encoding for one or many inputs
type Converter struct {
	Registry *imageprocessor.Registry
	Pairs    *imageprocessor.PairHandler
	Analyzer *metadata.Analyzer
	Encoder  SpatialEncoder
	// DB enables conversion history when non-nil
	DB *sql.DB

	Stdout io.Writer
	Stderr io.Writer
}

// NewConverter creates a converter with the default handlers
func NewConverter(encoder SpatialEncoder, db *sql.DB) *Converter {
	return &Converter{
		Registry: imageprocessor.NewRegistry(),
		Pairs:    imageprocessor.NewPairHandler(),
		Analyzer: metadata.DefaultAnalyzer(),
		Encoder:  encoder,
		DB:       db,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// ConvertAll converts every input. A failing file never stops the others.
func (c *Converter) ConvertAll(ctx context.Context, options ConvertOptions) BatchResult {
	startTime := time.Now()
	files := ExpandInputs(options.Inputs, c.Registry)

	workers := signalhandler.ResolveJobs(options.MaxWorkers)
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}
	logging.DebugLog("Converting %d file(s) with %d worker(s), by format: %v", len(files), workers, countFilesByFormat(files))

	var wg sync.WaitGroup
	resultsChan := make(chan ConvertResult, len(files))
	semaphore := make(chan struct{}, workers)
	results := make([]ConvertResult, len(files))

	tracker := NewProgressTracker(len(files), c.Stdout, c.Stderr, resultsChan)

	interrupted := false
	launched := 0
	for i, path := range files {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			interrupted = true
		}
		if interrupted {
			break
		}

		launched++
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result := c.ConvertFile(ctx, p, options)
			results[i] = result
			resultsChan <- result
		}(i, path)
	}

	wg.Wait()
	close(resultsChan)
	tracker.Wait()

	converted, skipped, errorCount := tracker.Totals()
	batch := BatchResult{
		Converted:   converted,
		Skipped:     skipped,
		Errors:      errorCount,
		Interrupted: interrupted || ctx.Err() != nil,
		Elapsed:     time.Since(startTime),
		Results:     results[:launched],
	}
	logging.DebugLog("Run completed in %v. Converted: %d, Skipped: %d, Errors: %d",
		batch.Elapsed, batch.Converted, batch.Skipped, batch.Errors)
	return batch
}

// ConvertFile extracts and encodes a single stereo container
func (c *Converter) ConvertFile(ctx context.Context, path string, options ConvertOptions) ConvertResult {
	start := time.Now()
	result := ConvertResult{
		Path:   path,
		Format: string(imageprocessor.GetFileFormat(path)),
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		result.Error = fmt.Errorf("file not found: %s", path)
		return result
	}

	outputPath, err := utils.OutputPathFor(path, options.OutputDir, options.Suffix)
	if err != nil {
		result.Error = err
		return result
	}
	result.Output = outputPath

	if c.DB != nil && !options.ForceRewrite {
		if skip := checkAndSkipIfUnchanged(c.DB, path, outputPath, fileInfo); skip != nil {
			skip.Format = result.Format
			return *skip
		}
	}

	pair, err := c.Registry.Extract(path)
	if err != nil {
		result.Error = err
		return result
	}
	if options.MetadataPath != "" {
		pair.MetadataSourcePath = options.MetadataPath
	}

	if err := c.encode(ctx, pair, outputPath, options, &result); err != nil {
		result.Error = err
		return result
	}

	if c.DB != nil {
		c.record(pair, path, outputPath, result.Format, formatModTime(fileInfo), options)
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// ConvertPair converts an explicit left/right pair
func (c *Converter) ConvertPair(ctx context.Context, options PairOptions) ConvertResult {
	start := time.Now()
	result := ConvertResult{
		Path:   options.Left,
		Format: "pair",
		Label:  filepath.Base(options.Left) + " + " + filepath.Base(options.Right),
	}

	for _, input := range []struct{ path, flag string }{
		{options.Left, "--left"},
		{options.Right, "--right"},
		{options.MetadataPath, "--metadata"},
	} {
		if input.path == "" {
			continue
		}
		if _, err := os.Stat(input.path); err != nil {
			result.Error = fmt.Errorf("%s file not found: %s", input.flag, input.path)
			return result
		}
	}

	pair, err := c.Pairs.Extract(options.Left, options.Right, options.MetadataPath)
	if err != nil {
		result.Error = err
		return result
	}

	outputPath := options.OutputPath
	if outputPath != "" {
		if err := utils.EnsureParentDir(outputPath); err != nil {
			result.Error = err
			return result
		}
	} else {
		outputPath, err = utils.OutputPathFor(options.Left, options.OutputDir, options.Suffix)
		if err != nil {
			result.Error = err
			return result
		}
	}
	result.Output = outputPath

	if err := c.encode(ctx, pair, outputPath, options.ConvertOptions, &result); err != nil {
		result.Error = err
		return result
	}

	if c.DB != nil {
		if info, err := os.Stat(options.Left); err == nil {
			c.record(pair, options.Left, outputPath, result.Format, formatModTime(info), options.ConvertOptions)
		}
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// Report prints a single result the same way a batch run does
func (c *Converter) Report(result ConvertResult) {
	tracker := &ProgressTracker{total: 1, stdout: c.Stdout, stderr: c.Stderr}
	tracker.report("", result)
}

func (c *Converter) encode(ctx context.Context, pair *types.StereoPair, outputPath string, options ConvertOptions, result *ConvertResult) error {
	if c.Encoder == nil {
		return errors.New("no spatial encoder configured")
	}
	if options.Verbose {
		result.Details = MetadataDetails(c.analyzer(), pair.MetadataSourcePath)
	}
	return c.Encoder.CreateSpatialHEIC(ctx, pair, outputPath, options.FOV, options.Baseline)
}

func (c *Converter) record(pair *types.StereoPair, source, outputPath, format, modTime string, options ConvertOptions) {
	fov, baseline := c.Encoder.ResolveParams(pair, options.FOV, options.Baseline)
	recordConversion(c.DB, types.ConversionRecord{
		SourcePath:     source,
		OutputPath:     outputPath,
		MetadataSource: pair.MetadataSourcePath,
		Format:         format,
		FOVHorizontal:  fov,
		Baseline:       baseline,
		ModifiedAt:     modTime,
	})
}

func (c *Converter) analyzer() *metadata.Analyzer {
	if c.Analyzer != nil {
		return c.Analyzer
	}
	return metadata.DefaultAnalyzer()
}

// MetadataDetails describes the camera summary of a metadata source for
// verbose output
func MetadataDetails(analyzer *metadata.Analyzer, metadataPath string) []string {
	if metadataPath == "" {
		return []string{"Metadata source: (none)"}
	}

	lines := []string{"Metadata source: " + filepath.Base(metadataPath)}
	summary := analyzer.SummaryFromPath(metadataPath)

	if summary.Make != "" || summary.Model != "" {
		lines = append(lines, fmt.Sprintf("Camera: %s %s", orUnknown(summary.Make), orUnknown(summary.Model)))
	}
	if summary.FocalLength > 0 {
		lines = append(lines, fmt.Sprintf("Focal length: %.1fmm", summary.FocalLength))
	}
	if summary.FocalLength35mm > 0 {
		lines = append(lines, fmt.Sprintf("Focal length (35mm equiv): %dmm", summary.FocalLength35mm))
	}
	if summary.SensorWidth > 0 {
		lines = append(lines, fmt.Sprintf("Sensor width: %.2fmm", summary.SensorWidth))
	}
	if fov, ok := summary.FOV(); ok {
		lines = append(lines, fmt.Sprintf("Computed FOV: %.1f°", fov))
	} else {
		lines = append(lines, "Computed FOV: (unavailable, will use default)")
	}
	return lines
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
