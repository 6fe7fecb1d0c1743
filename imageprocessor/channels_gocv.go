//go:build gocv

package imageprocessor

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

func init() {
	defaultChannelAnalyzer = GocvChannelAnalyzer{}
}

// GocvChannelAnalyzer computes channel means with OpenCV
type GocvChannelAnalyzer struct{}

func (GocvChannelAnalyzer) ChannelMeans(img image.Image) ([3]float64, error) {
	var means [3]float64
	if img == nil {
		return means, errors.New("nil image")
	}

	// ImageToMatRGB returns channels in BGR order
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return means, err
	}
	defer mat.Close()
	if mat.Empty() {
		return means, errors.New("empty image")
	}

	mean := mat.Mean()
	means[0] = mean.Val3
	means[1] = mean.Val2
	means[2] = mean.Val1
	return means, nil
}
