package align

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// tableFixture is a hand-built three-run alignment with a gap row and rows
// deliberately out of retention-time order.
func tableFixture() *Alignment {
	specA := core.MassSpectrum{{Mass: 73, Intensity: 400}, {Mass: 147, Intensity: 250}}
	specB := core.MassSpectrum{{Mass: 60, Intensity: 300}, {Mass: 73, Intensity: 100}}
	return &Alignment{
		runIDs: []string{"run1", "run2", "run3"},
		rows: []Row{
			{peaks: []*core.Peak{
				peakAt("run1", 30, specB),
				peakAt("run2", 30.2, specB),
				peakAt("run3", 30.1, specB),
			}},
			{peaks: []*core.Peak{
				peakAt("run1", 10, specA),
				nil,
				peakAt("run3", 10.2, specA),
			}},
			{peaks: []*core.Peak{
				nil,
				peakAt("run2", 20, specA),
				nil,
			}},
		},
	}
}

func TestTableOrdering(t *testing.T) {
	tab := tableFixture().Table()

	require.Equal(t, 3, tab.Len())
	if diff := cmp.Diff([]string{"run1", "run2", "run3"}, tab.RunIDs()); diff != "" {
		t.Fatalf("run ids mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 10.1, tab.MeanRT(0), 1e-9)
	assert.InDelta(t, 20.0, tab.MeanRT(1), 1e-9)
	assert.InDelta(t, 30.1, tab.MeanRT(2), 1e-9)

	assert.Equal(t, 10.0, tab.Peak(0, 0).RT)
	assert.Nil(t, tab.Peak(0, 1))
	assert.Nil(t, tab.Peak(1, 0))
	assert.Equal(t, 20.0, tab.Peak(1, 1).RT)
}

func TestTableOrderingTieBreak(t *testing.T) {
	spec := core.MassSpectrum{{Mass: 73, Intensity: 400}}
	al := &Alignment{
		runIDs: []string{"run1", "run2"},
		rows: []Row{
			{peaks: []*core.Peak{nil, peakAt("run2", 15, spec)}},
			{peaks: []*core.Peak{peakAt("run1", 15, spec), nil}},
		},
	}

	tab := al.Table()
	require.Equal(t, 2, tab.Len())
	// Equal mean retention times order by the earliest run holding a peak.
	assert.NotNil(t, tab.Peak(0, 0))
	assert.NotNil(t, tab.Peak(1, 1))
}

func TestTableCompositePeak(t *testing.T) {
	tab := tableFixture().Table()

	comp := tab.CompositePeak(0)
	require.NotNil(t, comp)
	assert.InDelta(t, 10.1, comp.RT, 1e-9)
	want := core.MassSpectrum{{Mass: 73, Intensity: 400}, {Mass: 147, Intensity: 250}}
	if diff := cmp.Diff(want, comp.Spectrum); diff != "" {
		t.Errorf("composite spectrum mismatch (-want +got):\n%s", diff)
	}
}

func TestTableCommonIon(t *testing.T) {
	tab := tableFixture().Table()

	ions := tab.CommonIon()
	require.Len(t, ions, 3)
	// Rows 0 and 1 hold specA peaks; 73 and 147 tie on frequency, so the
	// heavier mass wins.
	assert.Equal(t, 147.0, ions[0])
	assert.Equal(t, 147.0, ions[1])
	assert.Equal(t, 73.0, ions[2])
}

func TestFilterMinPeaks(t *testing.T) {
	al := tableFixture()

	kept := al.FilterMinPeaks(2)
	assert.Equal(t, 2, kept.Len())
	assert.Equal(t, 3, al.Len(), "filtering must not mutate the source")

	all := al.FilterMinPeaks(1)
	assert.Equal(t, 3, all.Len())

	none := al.FilterMinPeaks(4)
	assert.Equal(t, 0, none.Len())
}

func TestAlignedPeaks(t *testing.T) {
	al := tableFixture()

	peaks := al.AlignedPeaks()
	require.Len(t, peaks, 3)
	assert.InDelta(t, 30.1, peaks[0].RT, 1e-9)
	assert.InDelta(t, 10.1, peaks[1].RT, 1e-9)
	assert.InDelta(t, 20.0, peaks[2].RT, 1e-9)
}
