package imageprocessor

import (
	"errors"
	"image"
)

// channelMeanThreshold is the mean intensity (0-255) below which a channel
// is treated as zeroed out
const channelMeanThreshold = 2.0

var channelNames = [3]string{"R", "G", "B"}

// ChannelAnalyzer computes per-channel mean intensities on a 0-255 scale
type ChannelAnalyzer interface {
	ChannelMeans(img image.Image) ([3]float64, error)
}

// defaultChannelAnalyzer is replaced by the OpenCV implementation in gocv builds
var defaultChannelAnalyzer ChannelAnalyzer = PixelChannelAnalyzer{}

// DefaultChannelAnalyzer returns the analyzer compiled into this build
func DefaultChannelAnalyzer() ChannelAnalyzer {
	return defaultChannelAnalyzer
}

// PixelChannelAnalyzer averages channels by walking the pixel buffer
type PixelChannelAnalyzer struct{}

func (PixelChannelAnalyzer) ChannelMeans(img image.Image) ([3]float64, error) {
	var means [3]float64
	if img == nil {
		return means, errors.New("nil image")
	}
	b := img.Bounds()
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		return means, errors.New("empty image")
	}

	var sums [3]uint64
	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):rgba.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				sums[0] += uint64(row[i])
				sums[1] += uint64(row[i+1])
				sums[2] += uint64(row[i+2])
			}
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				sums[0] += uint64(r >> 8)
				sums[1] += uint64(g >> 8)
				sums[2] += uint64(bl >> 8)
			}
		}
	}

	for i := range sums {
		means[i] = float64(sums[i]) / n
	}
	return means, nil
}

// deadChannels names the channels whose mean falls below the threshold
func deadChannels(means [3]float64) []string {
	var dead []string
	for i, mean := range means {
		if mean < channelMeanThreshold {
			dead = append(dead, channelNames[i])
		}
	}
	return dead
}
