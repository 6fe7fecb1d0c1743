package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"os"

	// Decoders for separate-pair inputs
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// decodeFile decodes any registered raster format from disk
func decodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newSourceReadError(path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, newSourceReadError(path, err)
	}
	return img, nil
}

// decodeConfigFile reads only the image header
func decodeConfigFile(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	return cfg, err
}

// toRGBA copies an image into a freshly allocated RGBA buffer with origin (0,0)
func toRGBA(src image.Image) *image.RGBA {
	return cropRGBA(src, src.Bounds())
}

// cropRGBA copies the rectangle r of src into a new RGBA image
func cropRGBA(src image.Image, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

// opaqueRGBA drops the alpha channel, keeping the stored color values
func opaqueRGBA(src *image.NRGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()*4]
		for i := 0; i < len(srcRow); i += 4 {
			dstRow[i] = srcRow[i]
			dstRow[i+1] = srcRow[i+1]
			dstRow[i+2] = srcRow[i+2]
			dstRow[i+3] = 0xff
		}
	}
	return dst
}

// describeSize formats image dimensions for log messages
func describeSize(img image.Image) string {
	if img == nil {
		return "nil"
	}
	b := img.Bounds()
	return fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
}
