package scanner

import (
	"io/fs"
	"os"
	"path/filepath"

	"stereo2spatial/imageprocessor"
	"stereo2spatial/logging"
)

// ExpandInputs turns the command-line inputs into a list of files. Directories
// are walked for files with a supported extension; anything else is kept as
// given so that missing or unsupported files are reported per file.
func ExpandInputs(inputs []string, registry *imageprocessor.Registry) []string {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil || !info.IsDir() {
			add(input)
			continue
		}

		filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logging.LogError("Error accessing path %s: %v", path, err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if registry.CanLoadFile(path) {
				add(path)
			}
			return nil
		})
	}
	return files
}

// countFilesByFormat classifies files by their extension-derived format
func countFilesByFormat(paths []string) map[imageprocessor.FormatType]int {
	counts := make(map[imageprocessor.FormatType]int)
	for _, path := range paths {
		counts[imageprocessor.GetFileFormat(path)]++
	}
	return counts
}
