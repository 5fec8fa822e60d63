package selection

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minutemix/minutemix/internal/domain/track"
)

// scriptedSource feeds rand.Rand a fixed sequence of raw values so a test
// can dictate the exact permutations the fit rounds see.
type scriptedSource struct {
	vals []int64
	i    int
}

func (s *scriptedSource) Int63() int64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func (s *scriptedSource) Seed(int64) {}

func TestFit_RejectsTrialCountBelowOne(t *testing.T) {
	tests := []struct {
		name   string
		trials int
	}{
		{name: "zero trials", trials: 0},
		{name: "negative trials", trials: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Fit(makeTracks(3), 10*time.Minute, tt.trials, rand.New(rand.NewSource(1)))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTrialCount)
			assert.Empty(t, res.Tracks)
		})
	}
}

func TestFit_EmptyInputIsValid(t *testing.T) {
	res, err := Fit(nil, 10*time.Minute, 5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Empty(t, res.Tracks)
	assert.Equal(t, time.Duration(0), res.Total)
	assert.Equal(t, 0, res.Trials)
}

func TestFit_NonPositiveTargetIsValid(t *testing.T) {
	tracks := []track.Track{
		{ID: "a", Duration: 3 * time.Minute},
		{ID: "b", Duration: 0},
	}

	tests := []struct {
		name   string
		target time.Duration
	}{
		{name: "zero target", target: 0},
		{name: "negative target", target: -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Fit(tracks, tt.target, 10, rand.New(rand.NewSource(1)))
			require.NoError(t, err)
			assert.Empty(t, res.Tracks)
			assert.Equal(t, time.Duration(0), res.Total)
		})
	}
}

func TestFit_NeverExceedsTarget(t *testing.T) {
	tracks := makeTracks(200)
	target := time.Hour

	for seed := int64(0); seed < 10; seed++ {
		res, err := Fit(tracks, target, 10, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Total, target)
		assert.Equal(t, track.TotalDuration(res.Tracks), res.Total)
	}
}

func TestFit_ResultIsSubsetWithoutRepeats(t *testing.T) {
	tracks := makeTracks(100)
	inputIDs := make(map[string]bool, len(tracks))
	for _, tr := range tracks {
		inputIDs[tr.ID] = true
	}

	res, err := Fit(tracks, 30*time.Minute, 10, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.NotEmpty(t, res.Tracks)

	seen := make(map[string]bool, len(res.Tracks))
	for _, tr := range res.Tracks {
		assert.True(t, inputIDs[tr.ID], "track %s not in input", tr.ID)
		assert.False(t, seen[tr.ID], "track %s chosen twice", tr.ID)
		seen[tr.ID] = true
	}
}

func TestFit_ToleratesDuplicateIDs(t *testing.T) {
	dup := track.Track{ID: "same", Duration: 100 * time.Second}
	res, err := Fit([]track.Track{dup, dup}, 250*time.Second, 5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, res.Tracks, 2)
	assert.Equal(t, 200*time.Second, res.Total)
}

func TestFit_DeterministicForSeed(t *testing.T) {
	tracks := makeTracks(80)

	first, err := Fit(tracks, 45*time.Minute, 10, rand.New(rand.NewSource(1234)))
	require.NoError(t, err)
	second, err := Fit(tracks, 45*time.Minute, 10, rand.New(rand.NewSource(1234)))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFit_MoreTrialsNeverWorseForSameSeed(t *testing.T) {
	tracks := makeTracks(200)
	target := time.Hour

	var prev time.Duration
	for _, trials := range []int{1, 2, 10, 50} {
		res, err := Fit(tracks, target, trials, rand.New(rand.NewSource(99)))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Total, prev, "%d trials regressed", trials)
		prev = res.Total
	}
}

func TestFit_DoesNotMutateInput(t *testing.T) {
	tracks := makeTracks(40)
	snapshot := make([]track.Track, len(tracks))
	copy(snapshot, tracks)

	_, err := Fit(tracks, 20*time.Minute, 10, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	assert.Equal(t, snapshot, tracks)
}

func TestFit_SkipsTrackLargerThanTarget(t *testing.T) {
	tracks := []track.Track{{ID: "long", Duration: 500 * time.Second}}

	res, err := Fit(tracks, 400*time.Second, 10, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Empty(t, res.Tracks)
	assert.Equal(t, time.Duration(0), res.Total)
	assert.Equal(t, 10, res.Trials)
}

func TestFit_ZeroDurationTracksAlwaysIncluded(t *testing.T) {
	tracks := []track.Track{
		{ID: "z1", Duration: 0},
		{ID: "long", Duration: 500 * time.Second},
		{ID: "z2", Duration: 0},
	}

	res, err := Fit(tracks, 400*time.Second, 10, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"z1", "z2"}, track.IDs(res.Tracks))
	assert.Equal(t, time.Duration(0), res.Total)
}

func TestFit_AllZeroDurationsSelectsEverything(t *testing.T) {
	tracks := make([]track.Track, 5)
	for i := range tracks {
		tracks[i] = track.Track{ID: string(rune('a' + i))}
	}

	res, err := Fit(tracks, 10*time.Minute, 10, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Len(t, res.Tracks, len(tracks))
	assert.Equal(t, time.Duration(0), res.Total)
	assert.Equal(t, 10, res.Trials)
}

// Three tracks of 180s, 200s and 150s against a 300s target: no pair fits,
// so the best reachable total is the 200s track alone. The scripted source
// forces the round to scan that track first.
func TestFit_FindsBestSingleTrackFit(t *testing.T) {
	tracks := []track.Track{
		{ID: "1", Duration: 180 * time.Second},
		{ID: "2", Duration: 200 * time.Second},
		{ID: "3", Duration: 150 * time.Second},
	}

	// Draws: Intn(3) = 2 keeps index 2 in place, Intn(2) = 0 swaps the
	// first two, leaving the permutation [2 1 3].
	src := &scriptedSource{vals: []int64{2 << 32, 0}}
	res, err := Fit(tracks, 300*time.Second, 1, rand.New(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, track.IDs(res.Tracks))
	assert.Equal(t, 200*time.Second, res.Total)
	assert.Equal(t, 1, res.Trials)
}

// Two rounds reach the same total with different tracks; the earlier
// round's pick must survive.
func TestFit_FirstRoundWinsTies(t *testing.T) {
	tracks := []track.Track{
		{ID: "a", Duration: 100 * time.Second},
		{ID: "b", Duration: 100 * time.Second},
	}

	// Round one: Intn(2) = 0 swaps to [b a], picking b. Round two:
	// Intn(2) = 1 keeps [a b], picking a at the same total.
	src := &scriptedSource{vals: []int64{0, 1 << 32}}
	res, err := Fit(tracks, 100*time.Second, 2, rand.New(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, track.IDs(res.Tracks))
	assert.Equal(t, 100*time.Second, res.Total)
}
