package metadata

import "strings"

// SensorEntry maps a make/model substring pair to a sensor width in millimeters
type SensorEntry struct {
	Make  string
	Model string
	Width float64
}

// sensorTable is scanned top to bottom and the first match wins. Nikon "d7"
// appears twice (D700 family and APS-C D7xxx); the earlier row always applies.
var sensorTable = []SensorEntry{
	// Canon full-frame
	{"canon", "5d", 36.0},
	{"canon", "6d", 35.8},
	{"canon", "1d x", 36.0},
	{"canon", "eos r5", 36.0},
	{"canon", "eos r6", 35.9},
	{"canon", "eos r", 36.0},

	// Canon APS-C
	{"canon", "7d", 22.4},
	{"canon", "80d", 22.5},
	{"canon", "90d", 22.3},

	// Sony full-frame (a7 / a9)
	{"sony", "ilce-7", 35.8},
	{"sony", "ilce-9", 35.6},

	// Sony 1-inch and small-sensor compacts
	{"sony", "dsc-rx100", 13.2},
	{"sony", "dsc-rx10", 13.2},
	{"sony", "dsc-hx", 6.17},
	{"sony", "dsc-w", 6.17},

	// Fujifilm, including the W1/W3 stereo cameras
	{"fujifilm", "finepix real 3d", 6.16},
	{"fujifilm", "finepix w", 6.16},
	{"fujifilm", "x-t", 23.5},
	{"fujifilm", "x-pro", 23.5},
	{"fujifilm", "gfx", 43.8},

	// Nikon full-frame
	{"nikon", "d8", 35.9},
	{"nikon", "d7", 35.9},
	{"nikon", "z 5", 35.9},
	{"nikon", "z 6", 35.9},
	{"nikon", "z 7", 35.9},

	// Nikon APS-C; the "d7" row is shadowed by the full-frame one above
	{"nikon", "d5", 23.5},
	{"nikon", "d7", 23.5},
}

// SensorWidthFor looks up the sensor width for a camera. Matching is a
// case-insensitive substring test on both make and model.
func SensorWidthFor(make, model string) (float64, bool) {
	makeLower := strings.ToLower(strings.TrimSpace(make))
	modelLower := strings.ToLower(strings.TrimSpace(model))
	if makeLower == "" || modelLower == "" {
		return 0, false
	}

	for _, entry := range sensorTable {
		if strings.Contains(makeLower, entry.Make) && strings.Contains(modelLower, entry.Model) {
			return entry.Width, true
		}
	}
	return 0, false
}

// SensorEntries returns a copy of the lookup table in scan order
func SensorEntries() []SensorEntry {
	entries := make([]SensorEntry, len(sensorTable))
	copy(entries, sensorTable)
	return entries
}
