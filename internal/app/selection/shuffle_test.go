package selection

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minutemix/minutemix/internal/domain/track"
)

func makeTracks(n int) []track.Track {
	tracks := make([]track.Track, n)
	for i := range tracks {
		tracks[i] = track.Track{
			ID:       fmt.Sprintf("track-%03d", i),
			URI:      fmt.Sprintf("spotify:track:%03d", i),
			Duration: time.Duration(60+(i*37)%240) * time.Second,
		}
	}
	return tracks
}

func TestShuffle_PreservesTracks(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "empty", size: 0},
		{name: "single track", size: 1},
		{name: "two tracks", size: 2},
		{name: "small playlist", size: 5},
		{name: "large playlist", size: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks := makeTracks(tt.size)
			rng := rand.New(rand.NewSource(1))

			out := Shuffle(tracks, rng)

			require.Len(t, out, tt.size)

			inIDs := track.IDs(tracks)
			outIDs := track.IDs(out)
			sort.Strings(inIDs)
			sort.Strings(outIDs)
			assert.Equal(t, inIDs, outIDs)
		})
	}
}

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	tracks := makeTracks(20)
	snapshot := make([]track.Track, len(tracks))
	copy(snapshot, tracks)

	Shuffle(tracks, rand.New(rand.NewSource(3)))

	assert.Equal(t, snapshot, tracks)
}

func TestShuffle_DeterministicForSeed(t *testing.T) {
	tracks := makeTracks(30)

	first := Shuffle(tracks, rand.New(rand.NewSource(42)))
	second := Shuffle(tracks, rand.New(rand.NewSource(42)))

	assert.Equal(t, first, second)
}
