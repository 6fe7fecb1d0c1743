package imageprocessor

import (
	"path/filepath"
	"strings"
)

// FormatType represents a known input format
type FormatType string

// Known format constants
const (
	FormatUnknown FormatType = "unknown"
	FormatMPO     FormatType = "mpo"
	FormatJPS     FormatType = "jps"
	FormatPSD     FormatType = "psd"
	FormatJPEG    FormatType = "jpeg"
	FormatPNG     FormatType = "png"
	FormatTIFF    FormatType = "tiff"
	FormatBMP     FormatType = "bmp"
	FormatWEBP    FormatType = "webp"
)

// Map of extensions to format types
var formatExtensions = map[string]FormatType{
	".mpo":  FormatMPO,
	".jps":  FormatJPS,
	".psd":  FormatPSD,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".webp": FormatWEBP,
}

// normalizedExt returns the lowercased extension of path
func normalizedExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// GetFileFormat returns the format type based on file extension
func GetFileFormat(path string) FormatType {
	format, exists := formatExtensions[normalizedExt(path)]
	if !exists {
		return FormatUnknown
	}
	return format
}

// IsPairInput checks if a file can be decoded as one half of a separate pair
func IsPairInput(path string) bool {
	switch GetFileFormat(path) {
	case FormatJPEG, FormatPNG, FormatTIFF, FormatBMP, FormatWEBP, FormatMPO, FormatJPS:
		return true
	}
	return false
}
