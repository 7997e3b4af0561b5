package align

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipleThreeRuns(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 4
	// run2 is the odd one out, so run1 and run3 merge first; the final
	// columns must still follow declaration order.
	runs := []*Alignment{
		runWith("run1", refSpec, 10, 20, 30),
		runWith("run2", refSpec, 11, 21, 31),
		runWith("run3", refSpec, 10.1, 20.1, 30.1),
	}

	al, err := Multiple(context.Background(), cfg, runs)
	require.NoError(t, err)

	assert.Equal(t, []string{"run1", "run2", "run3"}, al.RunIDs())
	require.Equal(t, 3, al.Len())
	for i := 0; i < al.Len(); i++ {
		row := al.Row(i)
		require.Len(t, row.Members(), 3, "row %d", i)
		for j, id := range al.RunIDs() {
			require.Equal(t, id, row.Peaks()[j].RunID, "column %d must hold run %s", j, id)
		}
	}
}

func TestMultipleGapPropagates(t *testing.T) {
	cfg := testConfig()
	runs := []*Alignment{
		runWith("run1", refSpec, 10, 20, 30),
		runWith("run2", refSpec, 10.2, 30.2),
		runWith("run3", refSpec, 10.1, 20.1, 30.1),
	}

	al, err := Multiple(context.Background(), cfg, runs)
	require.NoError(t, err)
	require.Equal(t, 3, al.Len())

	full, partial := 0, 0
	for i := 0; i < al.Len(); i++ {
		switch len(al.Row(i).Members()) {
		case 3:
			full++
		case 2:
			partial++
			assert.Nil(t, al.Row(i).Peaks()[1], "the gap belongs to run2")
		}
	}
	assert.Equal(t, 2, full)
	assert.Equal(t, 1, partial)
}

func TestMultipleTooFewRuns(t *testing.T) {
	cfg := testConfig()
	_, err := Multiple(context.Background(), cfg, []*Alignment{runWith("run1", refSpec, 10)})
	assert.ErrorIs(t, err, ErrTooFewRuns)
}

func TestMultipleDuplicateRun(t *testing.T) {
	cfg := testConfig()
	runs := []*Alignment{
		runWith("run1", refSpec, 10),
		runWith("run1", refSpec, 11),
	}
	_, err := Multiple(context.Background(), cfg, runs)
	assert.ErrorIs(t, err, ErrDuplicateRun)
}

func TestMultipleCancelled(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runs := []*Alignment{
		runWith("run1", refSpec, 10),
		runWith("run2", refSpec, 10.1),
	}
	_, err := Multiple(ctx, cfg, runs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMultipleDeterministic(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 8
	build := func() []*Alignment {
		return []*Alignment{
			runWith("run1", refSpec, 10, 20, 30, 40),
			runWith("run2", refSpec, 10.3, 20.3, 40.3),
			runWith("run3", refSpec, 10.1, 20.1, 30.1, 40.1),
			runWith("run4", refSpec, 9.8, 29.8, 39.8),
		}
	}

	first, err := Multiple(context.Background(), cfg, build())
	require.NoError(t, err)
	for n := 0; n < 5; n++ {
		again, err := Multiple(context.Background(), cfg, build())
		require.NoError(t, err)
		require.Equal(t, first.Len(), again.Len())
		for i := 0; i < first.Len(); i++ {
			want := first.Row(i).Peaks()
			got := again.Row(i).Peaks()
			for j := range want {
				if want[j] == nil {
					require.Nil(t, got[j], "row %d col %d", i, j)
					continue
				}
				require.NotNil(t, got[j], "row %d col %d", i, j)
				require.Equal(t, want[j].RT, got[j].RT, "row %d col %d", i, j)
			}
		}
	}
}
