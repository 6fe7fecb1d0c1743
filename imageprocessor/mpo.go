package imageprocessor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/jpeg"
	"os"

	"stereo2spatial/logging"
	"stereo2spatial/metadata"
	"stereo2spatial/types"

	"github.com/rwcarlsen/goexif/tiff"
)

// MPF index tags
const (
	mpfTagNumberOfImages uint16 = 0xB001
	mpfTagEntry          uint16 = 0xB002
)

const mpfEntrySize = 16

var mpfIdentifier = []byte("MPF\x00")

// MPFEntry describes one image stored in a multi-picture file
type MPFEntry struct {
	Attribute uint32
	Size      uint32
	// Offset is relative to the start of the MPF header; zero for the first image
	Offset uint32
}

// MPFIndex is the parsed multi-picture index of a JPEG file
type MPFIndex struct {
	// HeaderStart is the absolute file offset that entry offsets are relative to
	HeaderStart int
	Entries     []MPFEntry
}

// FrameBounds returns the absolute byte range of image i. Frame 0 always
// starts at the beginning of the file and runs to its end; the JPEG decoder
// stops at the first EOI.
func (idx *MPFIndex) FrameBounds(i int, fileSize int) (int, int, error) {
	if i < 0 || i >= len(idx.Entries) {
		return 0, 0, fmt.Errorf("frame %d out of range (%d frames)", i, len(idx.Entries))
	}
	if i == 0 {
		return 0, fileSize, nil
	}
	entry := idx.Entries[i]
	start := idx.HeaderStart + int(entry.Offset)
	if entry.Offset == 0 || start+2 > fileSize {
		return 0, 0, fmt.Errorf("frame %d starts outside the file", i)
	}
	end := start + int(entry.Size)
	if end < start+2 || end > fileSize {
		end = fileSize
	}
	return start, end, nil
}

// ReadMPFIndex locates the APP2 MPF segment of a JPEG and decodes its index
func ReadMPFIndex(data []byte) (*MPFIndex, error) {
	payload, headerStart, err := findMPFSegment(data)
	if err != nil {
		return nil, err
	}

	t, err := tiff.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("invalid MPF header: %v", err)
	}
	if len(t.Dirs) == 0 {
		return nil, errors.New("MPF header has no index directory")
	}

	var entryTag *tiff.Tag
	count := -1
	for _, tag := range t.Dirs[0].Tags {
		switch tag.Id {
		case mpfTagEntry:
			entryTag = tag
		case mpfTagNumberOfImages:
			if n, err := tag.Int(0); err == nil {
				count = n
			}
		}
	}
	if entryTag == nil {
		return nil, errors.New("MPF index has no entry table")
	}

	raw := entryTag.Val
	n := len(raw) / mpfEntrySize
	if count >= 0 && count < n {
		n = count
	}
	idx := &MPFIndex{HeaderStart: headerStart, Entries: make([]MPFEntry, 0, n)}
	for i := 0; i < n; i++ {
		rec := raw[i*mpfEntrySize : (i+1)*mpfEntrySize]
		idx.Entries = append(idx.Entries, MPFEntry{
			Attribute: t.Order.Uint32(rec[0:4]),
			Size:      t.Order.Uint32(rec[4:8]),
			Offset:    t.Order.Uint32(rec[8:12]),
		})
	}
	return idx, nil
}

// findMPFSegment walks the JPEG marker segments up to the first scan and
// returns the MPF payload after its identifier plus that payload's file offset
func findMPFSegment(data []byte) ([]byte, int, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, 0, errors.New("not a JPEG file")
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil, 0, fmt.Errorf("expected marker at offset %d", pos)
		}
		marker := data[pos+1]
		switch {
		case marker == 0xFF:
			// fill byte
			pos++
			continue
		case marker == 0xD9 || marker == 0xDA:
			return nil, 0, errors.New("no MPF segment before image data")
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			pos += 2
			continue
		}

		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			return nil, 0, fmt.Errorf("truncated segment at offset %d", pos)
		}
		payload := data[pos+4 : pos+2+length]
		if marker == 0xE2 && bytes.HasPrefix(payload, mpfIdentifier) {
			return payload[len(mpfIdentifier):], pos + 4 + len(mpfIdentifier), nil
		}
		pos += 2 + length
	}
	return nil, 0, errors.New("no MPF segment found")
}

// MPOHandler reads multi-picture JPEG files: frame 0 is the left view, frame 1 the right
type MPOHandler struct {
	baseHandler
}

// NewMPOHandler creates a handler for .mpo files
func NewMPOHandler() *MPOHandler {
	return &MPOHandler{
		baseHandler: baseHandler{name: "mpo", extensions: []string{".mpo"}},
	}
}

// CanHandle requires a decodable second frame
func (h *MPOHandler) CanHandle(path string) bool {
	if !h.hasExtension(path) {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	_, _, err = secondFrame(data)
	if err != nil {
		logging.DebugLog("MPO check failed for %s: %v", path, err)
		return false
	}
	return true
}

// secondFrame returns the index and the bytes of frame 1 once its header decodes
func secondFrame(data []byte) (*MPFIndex, []byte, error) {
	idx, err := ReadMPFIndex(data)
	if err != nil {
		return nil, nil, err
	}
	if len(idx.Entries) < 2 {
		return nil, nil, fmt.Errorf("only %d frame(s)", len(idx.Entries))
	}
	start, end, err := idx.FrameBounds(1, len(data))
	if err != nil {
		return nil, nil, err
	}
	frame := data[start:end]
	if frame[0] != 0xFF || frame[1] != 0xD8 {
		return nil, nil, errors.New("frame 1 does not start with SOI")
	}
	if _, err := jpeg.DecodeConfig(bytes.NewReader(frame)); err != nil {
		return nil, nil, fmt.Errorf("frame 1 header: %v", err)
	}
	return idx, frame, nil
}

// ExtractPair decodes frames 0 and 1 independently
func (h *MPOHandler) ExtractPair(path string) (*types.StereoPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newSourceReadError(path, err)
	}

	idx, rightData, err := secondFrame(data)
	if err != nil {
		return nil, newSourceReadError(path, err)
	}
	leftStart, leftEnd, err := idx.FrameBounds(0, len(data))
	if err != nil {
		return nil, newSourceReadError(path, err)
	}
	leftData := data[leftStart:leftEnd]

	left, err := jpeg.Decode(bytes.NewReader(leftData))
	if err != nil {
		return nil, newSourceReadError(path, fmt.Errorf("frame 0: %v", err))
	}
	right, err := jpeg.Decode(bytes.NewReader(rightData))
	if err != nil {
		return nil, newSourceReadError(path, fmt.Errorf("frame 1: %v", err))
	}

	bounds := left.Bounds()
	summary := metadata.SummaryFromBytes(leftData, bounds.Dx(), bounds.Dy())

	pair := &types.StereoPair{
		Left:               toRGBA(left),
		Right:              toRGBA(right),
		SourcePath:         path,
		MetadataSourcePath: path,
	}
	if fov, ok := summary.FOV(); ok {
		pair.FOVHorizontal = ptr(fov)
	}

	logging.DebugLog("MPO %s: %d frames, left %s, right %s, camera %q %q",
		path, len(idx.Entries), describeSize(pair.Left), describeSize(pair.Right), summary.Make, summary.Model)
	return pair, nil
}
