package scanner

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"stereo2spatial/database"
	"stereo2spatial/logging"
	"stereo2spatial/types"
)

// checkAndSkipIfUnchanged returns a skip result when the source was already
// converted to outputPath, has not been modified since, and the output still
// exists
func checkAndSkipIfUnchanged(db *sql.DB, path, outputPath string, sourceInfo os.FileInfo) *ConvertResult {
	exists, storedModTime, err := database.CheckConversionExists(db, path, outputPath)
	if err != nil {
		return &ConvertResult{
			Path:  path,
			Error: fmt.Errorf("history lookup failed: %w", err),
		}
	}
	if !exists {
		return nil
	}

	if _, err := os.Stat(outputPath); err != nil {
		logging.DebugLog("Output %s is gone, converting %s again", outputPath, path)
		return nil
	}

	storedTime, err := time.Parse(time.RFC3339Nano, storedModTime)
	if err != nil {
		logging.DebugLog("Cannot parse stored time for %s: %v", path, err)
		return nil
	}

	if !sourceInfo.ModTime().After(storedTime) {
		logging.DebugLog("Skipping unchanged source: %s", path)
		return &ConvertResult{
			Path:    path,
			Output:  outputPath,
			Success: true,
			Skipped: true,
		}
	}
	return nil
}

// recordConversion stores a successful conversion in the history database
func recordConversion(db *sql.DB, rec types.ConversionRecord) {
	if err := database.StoreConversion(db, rec); err != nil {
		logging.LogWarning("Could not record conversion of %s: %v", rec.SourcePath, err)
	}
}

func formatModTime(info os.FileInfo) string {
	return info.ModTime().UTC().Format(time.RFC3339Nano)
}
