package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ChrisMcGann/gcalign/pkg/align"
	"github.com/ChrisMcGann/gcalign/pkg/core"
)

func testTable(t *testing.T) (*align.Table, align.Config) {
	t.Helper()
	spec := core.MassSpectrum{{Mass: 73, Intensity: 400}, {Mass: 147, Intensity: 250}}
	a := align.NewAlignment("run1", core.PeakList{
		{RT: 10, Spectrum: spec, Area: 650, RunID: "run1"},
		{RT: 20, Spectrum: spec, Area: 650, RunID: "run1"},
	})
	b := align.NewAlignment("run2", core.PeakList{
		{RT: 10.2, Spectrum: spec, Area: 650, RunID: "run2"},
	})

	cfg := align.Config{RTTolerance: 2.5, Gap: 0.3, MinSimilarity: 0.5, SpectrumWeight: 0.9}
	al, err := align.Pairwise(a, b, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return al.Table(), cfg
}

func TestWriteTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "aligned.db")

	w, err := NewWriter(dbPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	analysisID := w.AnalysisID()
	if analysisID == "" {
		t.Fatal("expected a non-empty analysis id")
	}

	tab, cfg := testTable(t)
	if err := w.WriteTable(tab, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	var runCount int
	if err := db.QueryRow(`SELECT RunCount FROM AnalysisTable WHERE AnalysisId = ?`, analysisID).Scan(&runCount); err != nil {
		t.Fatalf("failed to query analysis: %v", err)
	}
	if runCount != 2 {
		t.Errorf("got analysis run count %d, want 2", runCount)
	}

	var runs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM RunTable WHERE AnalysisId = ?`, analysisID).Scan(&runs); err != nil {
		t.Fatalf("failed to query runs: %v", err)
	}
	if runs != 2 {
		t.Errorf("got %d runs, want 2", runs)
	}

	var peakCount int
	if err := db.QueryRow(`SELECT PeakCount FROM RunTable WHERE AnalysisId = ? AND RunId = 'run1'`, analysisID).Scan(&peakCount); err != nil {
		t.Fatalf("failed to query run1: %v", err)
	}
	if peakCount != 2 {
		t.Errorf("got run1 peak count %d, want 2", peakCount)
	}

	var rows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM RowTable WHERE AnalysisId = ?`, analysisID).Scan(&rows); err != nil {
		t.Fatalf("failed to query rows: %v", err)
	}
	if rows != 2 {
		t.Errorf("got %d aligned rows, want 2", rows)
	}

	var peaks int
	if err := db.QueryRow(`SELECT COUNT(*) FROM PeakTable`).Scan(&peaks); err != nil {
		t.Fatalf("failed to query peaks: %v", err)
	}
	if peaks != 3 {
		t.Errorf("got %d peaks, want 3", peaks)
	}

	// Two ions per spectrum, eight bytes per float64.
	var blobLen int
	if err := db.QueryRow(`SELECT LENGTH(blobMass) FROM PeakTable LIMIT 1`).Scan(&blobLen); err != nil {
		t.Fatalf("failed to query blob: %v", err)
	}
	if blobLen != 16 {
		t.Errorf("got mass blob length %d, want 16", blobLen)
	}
}
