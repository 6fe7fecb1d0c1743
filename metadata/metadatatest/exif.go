// Package metadatatest builds small EXIF payloads for tests.
package metadatatest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
)

// TIFF field types
const (
	TypeASCII    uint16 = 2
	TypeShort    uint16 = 3
	TypeLong     uint16 = 4
	TypeRational uint16 = 5
)

// Entry is one IFD entry with its raw little-endian payload
type Entry struct {
	ID    uint16
	Type  uint16
	Count uint32
	Data  []byte
}

// ASCII returns a NUL-terminated string entry
func ASCII(id uint16, s string) Entry {
	data := append([]byte(s), 0)
	return Entry{ID: id, Type: TypeASCII, Count: uint32(len(data)), Data: data}
}

// Short returns a single SHORT entry
func Short(id uint16, v uint16) Entry {
	return Entry{ID: id, Type: TypeShort, Count: 1, Data: binary.LittleEndian.AppendUint16(nil, v)}
}

// Rational returns a single RATIONAL entry
func Rational(id uint16, num, den uint32) Entry {
	data := binary.LittleEndian.AppendUint32(nil, num)
	data = binary.LittleEndian.AppendUint32(data, den)
	return Entry{ID: id, Type: TypeRational, Count: 1, Data: data}
}

// Camera describes the tags written by CameraJPEG
type Camera struct {
	Make            string
	Model           string
	FocalLength     uint32 // whole mm, 0 to omit
	FocalLength35mm uint16 // 0 to omit
}

// Entries returns the top-level and capture directory entries for a camera
func (c Camera) Entries() (primary, capture []Entry) {
	if c.Make != "" {
		primary = append(primary, ASCII(0x010F, c.Make))
	}
	if c.Model != "" {
		primary = append(primary, ASCII(0x0110, c.Model))
	}
	if c.FocalLength > 0 {
		capture = append(capture, Rational(0x920A, c.FocalLength*10, 10))
	}
	if c.FocalLength35mm > 0 {
		capture = append(capture, Short(0xA405, c.FocalLength35mm))
	}
	return primary, capture
}

// TIFF lays out a little-endian TIFF block with IFD0 and, when capture is not
// empty, an Exif sub-IFD referenced from IFD0
func TIFF(primary, capture []Entry) []byte {
	const header = 8
	ifd0 := primary
	if len(capture) > 0 {
		ifd0 = append(append([]Entry(nil), primary...), Entry{ID: 0x8769, Type: TypeLong, Count: 1, Data: make([]byte, 4)})
	}

	dir0, data0 := layoutIFD(ifd0, header)
	exifStart := uint32(header + len(dir0) + len(data0))
	if len(capture) > 0 {
		ifd0[len(ifd0)-1].Data = binary.LittleEndian.AppendUint32(nil, exifStart)
		dir0, data0 = layoutIFD(ifd0, header)
	}

	var buf bytes.Buffer
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(42))
	binary.Write(&buf, binary.LittleEndian, uint32(header))
	buf.Write(dir0)
	buf.Write(data0)
	if len(capture) > 0 {
		dir1, data1 := layoutIFD(capture, exifStart)
		buf.Write(dir1)
		buf.Write(data1)
	}
	return buf.Bytes()
}

func layoutIFD(entries []Entry, start uint32) (dir, data []byte) {
	dataStart := start + 2 + 12*uint32(len(entries)) + 4
	dir = binary.LittleEndian.AppendUint16(nil, uint16(len(entries)))
	for _, e := range entries {
		dir = binary.LittleEndian.AppendUint16(dir, e.ID)
		dir = binary.LittleEndian.AppendUint16(dir, e.Type)
		dir = binary.LittleEndian.AppendUint32(dir, e.Count)
		if len(e.Data) <= 4 {
			value := make([]byte, 4)
			copy(value, e.Data)
			dir = append(dir, value...)
			continue
		}
		dir = binary.LittleEndian.AppendUint32(dir, dataStart+uint32(len(data)))
		data = append(data, e.Data...)
		if len(data)%2 == 1 {
			data = append(data, 0)
		}
	}
	dir = binary.LittleEndian.AppendUint32(dir, 0)
	return dir, data
}

// APP1 wraps a TIFF block in an Exif APP1 segment
func APP1(tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	seg := []byte{0xFF, 0xE1}
	seg = binary.BigEndian.AppendUint16(seg, uint16(len(payload)+2))
	return append(seg, payload...)
}

// InsertAfterSOI splices segments into a JPEG directly after its SOI marker
func InsertAfterSOI(jpg []byte, segments ...[]byte) []byte {
	out := append([]byte(nil), jpg[:2]...)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return append(out, jpg[2:]...)
}

// SolidJPEG encodes a w x h JPEG filled with c
func SolidJPEG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// CameraJPEG returns a solid JPEG carrying the camera's tags
func CameraJPEG(w, h int, c color.Color, cam Camera) []byte {
	primary, capture := cam.Entries()
	return InsertAfterSOI(SolidJPEG(w, h, c), APP1(TIFF(primary, capture)))
}
