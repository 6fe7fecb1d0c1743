package database

import (
	"database/sql"
	"fmt"
	"time"

	"stereo2spatial/logging"
	"stereo2spatial/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create table if it doesn't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		format TEXT,
		fov_horizontal REAL,
		baseline REAL,
		modified_at TEXT,
		converted_at TEXT,
		UNIQUE(source_path, output_path)
	);
	CREATE INDEX IF NOT EXISTS idx_source_path ON conversions(source_path);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Check if metadata_source column exists, add it if it doesn't
	var hasMetadataColumn bool
	err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('conversions') WHERE name='metadata_source'").Scan(&hasMetadataColumn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error checking for metadata_source column: %v", err)
	}

	if !hasMetadataColumn {
		_, err = db.Exec("ALTER TABLE conversions ADD COLUMN metadata_source TEXT;")
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("error adding metadata_source column: %v", err)
		}
		logging.DebugLog("Added 'metadata_source' column to history schema")
	}

	return db, nil
}

// CheckConversionExists checks if a source was already converted to outputPath
// and returns the source modification time recorded at that point
func CheckConversionExists(db *sql.DB, sourcePath, outputPath string) (bool, string, error) {
	var storedModTime sql.NullString
	err := db.QueryRow(
		"SELECT modified_at FROM conversions WHERE source_path = ? AND output_path = ?",
		sourcePath, outputPath,
	).Scan(&storedModTime)
	if err == sql.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("database error for %s: %v", sourcePath, err)
	}

	return true, storedModTime.String, nil
}

// StoreConversion records a successful conversion, replacing any earlier row
// for the same source and output
func StoreConversion(db *sql.DB, rec types.ConversionRecord) error {
	now := rec.ConvertedAt
	if now == "" {
		now = time.Now().Format(time.RFC3339)
	}

	stmt, err := db.Prepare(`
		INSERT OR REPLACE INTO conversions (
			source_path, output_path, metadata_source, format, fov_horizontal, baseline, modified_at, converted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %v", rec.SourcePath, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		rec.SourcePath,
		rec.OutputPath,
		rec.MetadataSource,
		rec.Format,
		rec.FOVHorizontal,
		rec.Baseline,
		rec.ModifiedAt,
		now,
	)
	if err != nil {
		return fmt.Errorf("cannot insert conversion for %s: %v", rec.SourcePath, err)
	}

	return nil
}

// ListConversions returns the most recent conversions first; limit <= 0 means all
func ListConversions(db *sql.DB, limit int) ([]types.ConversionRecord, error) {
	query := `SELECT id, source_path, output_path, COALESCE(metadata_source, ''), COALESCE(format, ''),
		COALESCE(fov_horizontal, 0), COALESCE(baseline, 0), COALESCE(modified_at, ''), COALESCE(converted_at, '')
		FROM conversions ORDER BY converted_at DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %v", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		var rec types.ConversionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.SourcePath,
			&rec.OutputPath,
			&rec.MetadataSource,
			&rec.Format,
			&rec.FOVHorizontal,
			&rec.Baseline,
			&rec.ModifiedAt,
			&rec.ConvertedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to read conversion row: %v", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// HistoryStats contains statistics about recorded conversions
type HistoryStats struct {
	TotalConversions int
	DistinctSources  int
	ByFormat         map[string]int
}

// GetHistoryStats retrieves statistics about recorded conversions
func GetHistoryStats(db *sql.DB) (*HistoryStats, error) {
	stats := HistoryStats{ByFormat: make(map[string]int)}

	err := db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT source_path) FROM conversions").
		Scan(&stats.TotalConversions, &stats.DistinctSources)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversions: %v", err)
	}

	rows, err := db.Query("SELECT COALESCE(format, ''), COUNT(*) FROM conversions GROUP BY format")
	if err != nil {
		return nil, fmt.Errorf("failed to group conversions: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var format string
		var count int
		if err := rows.Scan(&format, &count); err != nil {
			return nil, fmt.Errorf("failed to read format count: %v", err)
		}
		stats.ByFormat[format] = count
	}
	return &stats, rows.Err()
}
