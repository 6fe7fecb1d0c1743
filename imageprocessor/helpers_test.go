package imageprocessor

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func solidRGBA(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

// buildMPO joins two JPEGs into a multi-picture file. extra segments are
// inserted into the first frame ahead of the MPF segment.
func buildMPO(first, second []byte, extra ...[]byte) []byte {
	const tiffSize = 8 + 2 + 3*12 + 4 + 32

	var prefix []byte
	for _, seg := range extra {
		prefix = append(prefix, seg...)
	}
	app2Len := 2 + 4 + tiffSize
	headerStart := 2 + len(prefix) + 4 + 4
	frame0Size := len(first) + len(prefix) + 2 + app2Len

	be := binary.BigEndian
	tiff := []byte("MM\x00\x2a")
	tiff = be.AppendUint32(tiff, 8)
	tiff = be.AppendUint16(tiff, 3)
	// MPFVersion
	tiff = be.AppendUint16(tiff, 0xB000)
	tiff = be.AppendUint16(tiff, 7)
	tiff = be.AppendUint32(tiff, 4)
	tiff = append(tiff, "0100"...)
	// NumberOfImages
	tiff = be.AppendUint16(tiff, 0xB001)
	tiff = be.AppendUint16(tiff, 4)
	tiff = be.AppendUint32(tiff, 1)
	tiff = be.AppendUint32(tiff, 2)
	// MPEntry
	tiff = be.AppendUint16(tiff, 0xB002)
	tiff = be.AppendUint16(tiff, 7)
	tiff = be.AppendUint32(tiff, 32)
	tiff = be.AppendUint32(tiff, 8+2+3*12+4)
	tiff = be.AppendUint32(tiff, 0)

	tiff = be.AppendUint32(tiff, 0x20030000)
	tiff = be.AppendUint32(tiff, uint32(frame0Size))
	tiff = be.AppendUint32(tiff, 0)
	tiff = be.AppendUint32(tiff, 0)
	tiff = be.AppendUint32(tiff, 0x00020002)
	tiff = be.AppendUint32(tiff, uint32(len(second)))
	tiff = be.AppendUint32(tiff, uint32(frame0Size-headerStart))
	tiff = be.AppendUint32(tiff, 0)

	app2 := []byte{0xFF, 0xE2}
	app2 = be.AppendUint16(app2, uint16(app2Len))
	app2 = append(app2, "MPF\x00"...)
	app2 = append(app2, tiff...)

	out := append([]byte(nil), first[:2]...)
	out = append(out, prefix...)
	out = append(out, app2...)
	out = append(out, first[2:]...)
	return append(out, second...)
}

type psdLayerSpec struct {
	name  string
	rect  image.Rectangle
	color color.NRGBA
}

// buildPSD writes an uncompressed 8-bit RGB document with one solid layer per
// spec, each carrying a transparency channel
func buildPSD(width, height int, layers []psdLayerSpec) []byte {
	be := binary.BigEndian

	var info []byte
	info = be.AppendUint16(info, uint16(len(layers)))
	channelIDs := []int16{-1, 0, 1, 2}
	for _, l := range layers {
		info = be.AppendUint32(info, uint32(l.rect.Min.Y))
		info = be.AppendUint32(info, uint32(l.rect.Min.X))
		info = be.AppendUint32(info, uint32(l.rect.Max.Y))
		info = be.AppendUint32(info, uint32(l.rect.Max.X))
		info = be.AppendUint16(info, uint16(len(channelIDs)))
		for _, id := range channelIDs {
			info = be.AppendUint16(info, uint16(id))
			info = be.AppendUint32(info, uint32(2+l.rect.Dx()*l.rect.Dy()))
		}
		info = append(info, "8BIMnorm"...)
		info = append(info, 255, 0, 0, 0)

		name := append([]byte{byte(len(l.name))}, l.name...)
		for len(name)%4 != 0 {
			name = append(name, 0)
		}
		info = be.AppendUint32(info, uint32(8+len(name)))
		// no mask, no blending ranges
		info = be.AppendUint32(info, 0)
		info = be.AppendUint32(info, 0)
		info = append(info, name...)
	}
	for _, l := range layers {
		n := l.rect.Dx() * l.rect.Dy()
		for _, v := range []uint8{l.color.A, l.color.R, l.color.G, l.color.B} {
			info = be.AppendUint16(info, 0)
			info = append(info, bytes.Repeat([]byte{v}, n)...)
		}
	}
	if len(info)%2 != 0 {
		info = append(info, 0)
	}

	out := []byte("8BPS")
	out = be.AppendUint16(out, 1)
	out = append(out, make([]byte, 6)...)
	out = be.AppendUint16(out, 3)
	out = be.AppendUint32(out, uint32(height))
	out = be.AppendUint32(out, uint32(width))
	out = be.AppendUint16(out, 8)
	out = be.AppendUint16(out, 3)
	// color mode data, image resources
	out = be.AppendUint32(out, 0)
	out = be.AppendUint32(out, 0)

	out = be.AppendUint32(out, uint32(4+len(info)+4))
	out = be.AppendUint32(out, uint32(len(info)))
	out = append(out, info...)
	// global layer mask
	out = be.AppendUint32(out, 0)

	// merged image, raw
	out = be.AppendUint16(out, 0)
	return append(out, make([]byte, 3*width*height)...)
}
