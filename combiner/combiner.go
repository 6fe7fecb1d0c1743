// Package combiner hands an extracted stereo pair to the external pair2spatial
// encoder, which writes the spatial HEIC.
package combiner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"stereo2spatial/logging"
	"stereo2spatial/types"
)

// Camera parameters used when neither an override nor the pair provides one
const (
	DefaultFOVHorizontal = 55.0
	DefaultBaseline      = 65.0
	DefaultQuality       = 95
)

var commandContext = exec.CommandContext

// Option configures an Encoder.
type Option func(*Encoder)

// WithQuality sets the JPEG quality of the intermediate left/right images.
func WithQuality(quality int) Option {
	return func(e *Encoder) {
		if quality >= 1 && quality <= 100 {
			e.quality = quality
		}
	}
}

// WithDefaults replaces the fallback FOV and baseline.
func WithDefaults(fov, baseline float64) Option {
	return func(e *Encoder) {
		if fov > 0 {
			e.defaultFOV = fov
		}
		if baseline > 0 {
			e.defaultBaseline = baseline
		}
	}
}

// WithStatusWriter sets where the encoder's stderr goes after a successful run.
func WithStatusWriter(w io.Writer) Option {
	return func(e *Encoder) {
		e.status = w
	}
}

// Encoder wraps the pair2spatial command-line tool.
type Encoder struct {
	binary          string
	quality         int
	defaultFOV      float64
	defaultBaseline float64
	status          io.Writer
}

// NewEncoder constructs an Encoder for the given binary path.
func NewEncoder(binary string, opts ...Option) *Encoder {
	e := &Encoder{
		binary:          binary,
		quality:         DefaultQuality,
		defaultFOV:      DefaultFOVHorizontal,
		defaultBaseline: DefaultBaseline,
		status:          os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Binary returns the encoder path.
func (e *Encoder) Binary() string {
	return e.binary
}

// ResolveParams picks FOV and baseline: override, then pair value, then default.
func (e *Encoder) ResolveParams(pair *types.StereoPair, fovOverride, baselineOverride *float64) (float64, float64) {
	fov := e.defaultFOV
	if v, ok := pair.FOV(); ok && v > 0 {
		fov = v
	}
	if fovOverride != nil && *fovOverride > 0 {
		fov = *fovOverride
	}

	baseline := e.defaultBaseline
	if v, ok := pair.BaselineMM(); ok && v > 0 {
		baseline = v
	}
	if baselineOverride != nil && *baselineOverride > 0 {
		baseline = *baselineOverride
	}
	return fov, baseline
}

// CreateSpatialHEIC writes the pair to a private temp directory and runs the
// encoder to produce outputPath.
func (e *Encoder) CreateSpatialHEIC(ctx context.Context, pair *types.StereoPair, outputPath string, fovOverride, baselineOverride *float64) error {
	if pair == nil || pair.Left == nil || pair.Right == nil {
		return errors.New("stereo pair with both views required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	fov, baseline := e.ResolveParams(pair, fovOverride, baselineOverride)

	tmpDir, err := os.MkdirTemp("", "stereo2spatial_")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	leftPath := filepath.Join(tmpDir, "left.jpg")
	rightPath := filepath.Join(tmpDir, "right.jpg")
	if err := writeJPEG(leftPath, pair.Left, e.quality); err != nil {
		return err
	}
	if err := writeJPEG(rightPath, pair.Right, e.quality); err != nil {
		return err
	}

	args := []string{
		leftPath,
		rightPath,
		outputPath,
		"--fov", formatFloat(fov),
		"--baseline", formatFloat(baseline),
	}
	if donor := pair.MetadataSourcePath; donor != "" && isRegularFile(donor) {
		args = append(args, "--metadata", donor)
	}

	logging.DebugLog("running %s %v", e.binary, args)

	var stderr bytes.Buffer
	cmd := commandContext(ctx, e.binary, args...) //nolint:gosec
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("encoding %s interrupted: %w", outputPath, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &EncodeError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return fmt.Errorf("start %s: %w", EncoderName, err)
	}

	// pair2spatial reports status on stderr
	if stderr.Len() > 0 && e.status != nil {
		e.status.Write(stderr.Bytes())
	}
	return nil
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
