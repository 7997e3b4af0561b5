package jsonmatrix

import (
	"strings"
	"testing"
)

const doc = `{
  "run_id": "sample-a",
  "times": [1.0, 1.5, 2.0],
  "masses": [50, 73],
  "intensities": [[0, 10], [5, 20], [0, 15]]
}`

func TestRead(t *testing.T) {
	m, err := Read(strings.NewReader(doc), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.RunID() != "sample-a" {
		t.Errorf("got run id %q, want %q", m.RunID(), "sample-a")
	}
	if m.NumScans() != 3 || m.NumChannels() != 2 {
		t.Fatalf("got %dx%d matrix, want 3x2", m.NumScans(), m.NumChannels())
	}
	if m.Intensity(1, 1) != 20 {
		t.Errorf("got intensity %v, want 20", m.Intensity(1, 1))
	}
}

func TestReadRunIDOverride(t *testing.T) {
	m, err := Read(strings.NewReader(doc), "override")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.RunID() != "override" {
		t.Errorf("got run id %q, want %q", m.RunID(), "override")
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "rt,50\n1.0,1\n"},
		{name: "missing run id", input: `{"times":[1,2],"masses":[50],"intensities":[[1],[2]]}`},
		{name: "ragged intensities", input: `{"run_id":"a","times":[1,2],"masses":[50,51],"intensities":[[1],[2,3]]}`},
		{name: "times mismatch", input: `{"run_id":"a","times":[1,2,3],"masses":[50],"intensities":[[1],[2]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.input), ""); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
