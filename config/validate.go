package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCamera(); err != nil {
		return err
	}
	if c.Encoder.Quality < 1 || c.Encoder.Quality > 100 {
		return fmt.Errorf("encoder.quality must be between 1 and 100, got %d", c.Encoder.Quality)
	}
	if c.Batch.Jobs < 0 {
		return errors.New("batch.jobs must not be negative")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateCamera() error {
	if !positiveFinite(c.Camera.FOVHorizontal) || c.Camera.FOVHorizontal >= 180 {
		return fmt.Errorf("camera.fov_horizontal must be between 0 and 180 degrees, got %v", c.Camera.FOVHorizontal)
	}
	if !positiveFinite(c.Camera.Baseline) {
		return fmt.Errorf("camera.baseline must be positive, got %v", c.Camera.Baseline)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
