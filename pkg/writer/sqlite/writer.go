// Package sqlite persists aligned peak tables to SQLite database files.
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/gcalign/pkg/align"
	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// Date format for AnalysisTable (ISO 8601).
const analysisDateFormat = "2006-01-02"

// Writer handles writing aligned peak tables to SQLite database files.
type Writer struct {
	db         *sql.DB
	outputPath string
	analysisID string
	runStmt    *sql.Stmt
	rowStmt    *sql.Stmt
	peakStmt   *sql.Stmt
	rowID      int
	peakID     int
}

// NewWriter creates a new SQLite writer. Every writer gets a fresh analysis
// identifier so repeated exports into one database stay distinguishable.
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		analysisID: uuid.NewString(),
		rowID:      1,
		peakID:     1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// AnalysisID returns the identifier rows written by this writer carry.
func (w *Writer) AnalysisID() string { return w.analysisID }

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS AnalysisTable (
		AnalysisId TEXT PRIMARY KEY,
		CreationDate TEXT,
		RunCount INTEGER,
		RowCount INTEGER,
		RTTolerance DOUBLE,
		GapPenalty DOUBLE,
		MinSimilarity DOUBLE
	);

	CREATE TABLE IF NOT EXISTS RunTable (
		AnalysisId TEXT REFERENCES AnalysisTable(AnalysisId),
		RunIndex INTEGER,
		RunId TEXT,
		PeakCount INTEGER
	);

	CREATE TABLE IF NOT EXISTS RowTable (
		RowId INTEGER PRIMARY KEY,
		AnalysisId TEXT REFERENCES AnalysisTable(AnalysisId),
		UID TEXT,
		MeanRT DOUBLE,
		CommonIonMass DOUBLE
	);

	CREATE TABLE IF NOT EXISTS PeakTable (
		PeakId INTEGER PRIMARY KEY,
		RowId INTEGER REFERENCES RowTable(RowId),
		RunIndex INTEGER,
		RetentionTime DOUBLE,
		Area DOUBLE,
		ApexScan INTEGER,
		blobMass BLOB,
		blobIntensity BLOB
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.runStmt, err = w.db.Prepare(`
		INSERT INTO RunTable (AnalysisId, RunIndex, RunId, PeakCount)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run statement: %w", err)
	}

	w.rowStmt, err = w.db.Prepare(`
		INSERT INTO RowTable (RowId, AnalysisId, UID, MeanRT, CommonIonMass)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare row statement: %w", err)
	}

	w.peakStmt, err = w.db.Prepare(`
		INSERT INTO PeakTable (PeakId, RowId, RunIndex, RetentionTime, Area, ApexScan, blobMass, blobIntensity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare peak statement: %w", err)
	}

	return nil
}

// WriteTable writes an aligned peak table, its runs and all matched peaks.
func (w *Writer) WriteTable(t *align.Table, cfg align.Config) error {
	runIDs := t.RunIDs()

	_, err := w.db.Exec(`
		INSERT INTO AnalysisTable (AnalysisId, CreationDate, RunCount, RowCount, RTTolerance, GapPenalty, MinSimilarity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.analysisID, time.Now().Format(analysisDateFormat), len(runIDs), t.Len(),
		cfg.RTTolerance, cfg.Gap, cfg.MinSimilarity)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	peakCounts := make([]int, len(runIDs))
	for i := 0; i < t.Len(); i++ {
		for j := range runIDs {
			if t.Peak(i, j) != nil {
				peakCounts[j]++
			}
		}
	}
	for j, id := range runIDs {
		if _, err := w.runStmt.Exec(w.analysisID, j, id, peakCounts[j]); err != nil {
			return fmt.Errorf("failed to insert run %s: %w", id, err)
		}
	}

	commonIons := t.CommonIon()
	for i := 0; i < t.Len(); i++ {
		uid := ""
		if compo := t.CompositePeak(i); compo != nil {
			uid = compo.UID()
		}
		if _, err := w.rowStmt.Exec(w.rowID, w.analysisID, uid, t.MeanRT(i), commonIons[i]); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}

		for j := range runIDs {
			p := t.Peak(i, j)
			if p == nil {
				continue
			}
			mzBlob := encodeSpectrumFloat64(p.Spectrum, true)
			intBlob := encodeSpectrumFloat64(p.Spectrum, false)
			if _, err := w.peakStmt.Exec(w.peakID, w.rowID, j, p.RT, p.Area, p.ApexScan, mzBlob, intBlob); err != nil {
				return fmt.Errorf("failed to insert peak %s: %w", p.UID(), err)
			}
			w.peakID++
		}
		w.rowID++
	}

	return nil
}

// encodeSpectrumFloat64 encodes spectrum data as little-endian float64 blob
func encodeSpectrumFloat64(spec core.MassSpectrum, useMass bool) []byte {
	buf := make([]byte, len(spec)*8)
	for i, ion := range spec {
		var value float64
		if useMass {
			value = ion.Mass
		} else {
			value = ion.Intensity
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// Finalize closes the prepared statements and the database.
func (w *Writer) Finalize() error {
	if w.runStmt != nil {
		w.runStmt.Close()
	}
	if w.rowStmt != nil {
		w.rowStmt.Close()
	}
	if w.peakStmt != nil {
		w.peakStmt.Close()
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
