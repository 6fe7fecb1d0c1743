package utils

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OutputExtension is the extension of every produced spatial photo
const OutputExtension = ".heic"

// OutputPathFor derives the spatial photo path for an input: the input stem plus
// suffix with a .heic extension, placed in outputDir or next to the input.
// outputDir is created when missing.
func OutputPathFor(inputPath, outputDir, suffix string) (string, error) {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "", fmt.Errorf("cannot derive output name from %q", inputPath)
	}

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %v", dir, err)
	}

	return filepath.Join(dir, stem+suffix+OutputExtension), nil
}

// GetDefaultDatabasePath returns the default path for the history database
func GetDefaultDatabasePath() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "stereo2spatial", "history.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return "history.db"
	}
	return filepath.Join(home, ".local", "share", "stereo2spatial", "history.db")
}

// EnsureParentDir creates the directory that will hold path
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	return nil
}

// ParseFOV parses and validates a horizontal field of view in degrees
func ParseFOV(value string) (float64, error) {
	fov, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || !isFinite(fov) || fov <= 0 || fov >= 180 {
		return 0, fmt.Errorf("invalid field of view '%s': must be between 0 and 180 degrees", value)
	}
	return fov, nil
}

// ParseBaseline parses and validates a stereo baseline in millimeters
func ParseBaseline(value string) (float64, error) {
	baseline, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || !isFinite(baseline) || baseline <= 0 {
		return 0, fmt.Errorf("invalid baseline '%s': must be a positive number of millimeters", value)
	}
	return baseline, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
